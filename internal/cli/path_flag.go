package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
	"github.com/spf13/pflag"
)

// pathValue is a pflag.Value holding a dotted tree path such as "0.2.1".
type pathValue struct {
	path tree.Path
}

var _ pflag.Value = (*pathValue)(nil)

func (p *pathValue) String() string {
	if p.path == nil {
		return ""
	}
	return p.path.String()
}

func (p *pathValue) Set(s string) error {
	path, err := tree.ParsePath(s)
	if err != nil {
		return err
	}
	p.path = path
	return nil
}

func (p *pathValue) Type() string { return "path" }

// Path returns the parsed path, or nil when the flag was not given.
func (p *pathValue) Path() tree.Path { return p.path }

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// liveNode resolves path and rejects paths that address nothing or a
// soft-deleted node.
func liveNode(forest []tree.Node[domain.PlanItem], path tree.Path) (tree.Node[domain.PlanItem], error) {
	n, ok := tree.Resolve(forest, path)
	if !ok {
		return n, fmt.Errorf("no plan node at %s", path)
	}
	for i := 1; i <= len(path); i++ {
		if anc, _ := tree.Resolve(forest, path[:i]); anc.Deleted {
			return n, fmt.Errorf("plan node %s is deleted", path)
		}
	}
	return n, nil
}
