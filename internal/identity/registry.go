package identity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxParallelResolves bounds concurrent model-definition reads.
const maxParallelResolves = 8

// Identity is the metadata derived for one model-definition file.
type Identity struct {
	// ModelName is the display name of the model.
	ModelName string

	// RDNN is the model namespace in reverse-domain notation.
	RDNN string

	// Workspace is the file's directory relative to the discovery root.
	Workspace string
}

// InvocablePath builds the evaluation path of an invocable in this model:
// "[workspace/]rdnn/invocable".
func (id Identity) InvocablePath(invocable string) string {
	var b strings.Builder
	if id.Workspace != "" {
		b.WriteString(id.Workspace)
		b.WriteByte('/')
	}
	b.WriteString(id.RDNN)
	b.WriteByte('/')
	b.WriteString(invocable)
	return b.String()
}

// Resolve derives the identity of the model-definition file dir/fileName
// relative to root.
func Resolve(root, dir, fileName string) (Identity, error) {
	path := filepath.Join(dir, fileName)

	def, err := ReadDefinition(path)
	if err != nil {
		return Identity{}, err
	}
	rdnn, err := RDNN(def.Namespace)
	if err != nil {
		return Identity{}, &DefinitionError{File: path, Reason: "failed to derive namespace", Err: err}
	}
	workspace, err := WorkspaceName(root, path)
	if err != nil {
		return Identity{}, &DefinitionError{File: path, Reason: "failed to derive workspace name", Err: err}
	}
	return Identity{ModelName: def.Name, RDNN: rdnn, Workspace: workspace}, nil
}

// Registry maps model-definition file names to their identity metadata.
// It is not safe for concurrent writes; ResolveAll does its concurrent work
// before touching the maps.
type Registry struct {
	modelNames map[string]string
	rdnns      map[string]string
	workspaces map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modelNames: make(map[string]string),
		rdnns:      make(map[string]string),
		workspaces: make(map[string]string),
	}
}

// Add stores the identity for a file name, replacing any previous entry.
func (r *Registry) Add(fileName string, id Identity) {
	r.modelNames[fileName] = id.ModelName
	r.rdnns[fileName] = id.RDNN
	r.workspaces[fileName] = id.Workspace
}

// Len returns the number of resolved files.
func (r *Registry) Len() int {
	return len(r.modelNames)
}

// ModelName returns the model display name for a file name.
func (r *Registry) ModelName(fileName string) (string, error) {
	return lookup(r.modelNames, fileName)
}

// RDNN returns the model namespace RDNN for a file name.
func (r *Registry) RDNN(fileName string) (string, error) {
	return lookup(r.rdnns, fileName)
}

// WorkspaceName returns the workspace name for a file name.
func (r *Registry) WorkspaceName(fileName string) (string, error) {
	return lookup(r.workspaces, fileName)
}

// Lookup returns the full identity for a file name.
func (r *Registry) Lookup(fileName string) (Identity, error) {
	name, err := r.ModelName(fileName)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		ModelName: name,
		RDNN:      r.rdnns[fileName],
		Workspace: r.workspaces[fileName],
	}, nil
}

func lookup(m map[string]string, fileName string) (string, error) {
	v, ok := m[fileName]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModel, fileName)
	}
	return v, nil
}

// ResolveAll resolves every model-definition file of one directory in
// parallel. Every file is attempted; successfully resolved files are added to
// the registry in the order given, failed files are left out and their errors
// are joined in the returned error.
func (r *Registry) ResolveAll(ctx context.Context, root, dir string, fileNames []string) error {
	ids := make([]Identity, len(fileNames))
	errs := make([]error, len(fileNames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelResolves)
	for i, name := range fileNames {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			ids[i], errs[i] = Resolve(root, dir, name)
			return nil
		})
	}
	_ = g.Wait() // goroutines report through errs

	for i, name := range fileNames {
		if errs[i] == nil {
			r.Add(name, ids[i])
		}
	}
	return errors.Join(errs...)
}
