package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/validate"
)

// cliNotifier prints editor notifications to the command output. It
// remembers the last step reported invalid so the wizard can jump there.
type cliNotifier struct {
	mu          sync.Mutex
	out         io.Writer
	lastInvalid int
}

func newCLINotifier(out io.Writer) *cliNotifier {
	return &cliNotifier{out: out}
}

func (n *cliNotifier) ValidationFailed(step int, errs validate.Errors) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastInvalid = step
	fmt.Fprintf(n.out, "%s\n%s", formatter.StyleRed.Render(fmt.Sprintf("Step %d has errors:", step)), formatter.FormatErrors(errs))
}

func (n *cliNotifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, formatter.Dim("Cancelled."))
}

func (n *cliNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", formatter.StyleGreen.Render("✔"), message)
}

func (n *cliNotifier) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", formatter.StyleRed.Render("✖"), err)
}

// takeInvalidStep returns and clears the last step reported invalid.
func (n *cliNotifier) takeInvalidStep() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	step := n.lastInvalid
	n.lastInvalid = 0
	return step
}
