package mirror

import (
	"fmt"
	"strings"

	"github.com/Wazzymandias/github-linear-sync/internal/linear"
)

// ProjectNotFoundError reports a project reference that matched nothing.
// This is a configuration error: the whole batch aborts, since no issue
// can be created without a resolved project.
type ProjectNotFoundError struct {
	Ref string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("no project matches %q (by id, slug, name, or URL)", e.Ref)
}

// ResolveProject resolves a loose project reference (an ID, a slug, a
// name, or a fragment of the project URL) against the accessible projects.
// All project-by-string lookups go through here so the matching rules stay
// in one place.
func ResolveProject(projects []linear.Project, ref string) (*linear.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &ProjectNotFoundError{Ref: ref}
	}

	for i := range projects {
		p := &projects[i]
		if p.ID == ref || p.SlugID == ref {
			return p, nil
		}
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
		if p.URL != "" && strings.Contains(p.URL, ref) {
			return p, nil
		}
	}

	return nil, &ProjectNotFoundError{Ref: ref}
}
