// Package catalog defines the objects held by an integration services catalog and the
// session contract the deployment engine needs from it.
package catalog

import (
	"context"
	"time"
)

// Session is a connection to a single catalog. Handles returned by a Session are
// detached snapshots: changing them has no effect until they are passed back to
// AlterProject or AlterEnvironment.
type Session interface {
	// Folder returns the folder with the given name or a KindNotFound error.
	Folder(ctx context.Context, name string) (*Folder, error)
	CreateFolder(ctx context.Context, name, description string) (*Folder, error)

	// DeployProject uploads artifact into folder under name, replacing any project
	// with that name. A rejected artifact is reported through the result status, not
	// through the returned error.
	DeployProject(ctx context.Context, folder *Folder, name string, artifact []byte) (*OperationResult, error)
	Project(ctx context.Context, folder *Folder, name string) (*Project, error)
	AlterProject(ctx context.Context, p *Project) error

	Environment(ctx context.Context, folder *Folder, name string) (*Environment, error)
	CreateEnvironment(ctx context.Context, folder *Folder, name, description string) (*Environment, error)
	// DropEnvironment removes the environment and all of its variables.
	DropEnvironment(ctx context.Context, env *Environment) error
	AlterEnvironment(ctx context.Context, env *Environment) error

	Close() error
}

type Folder struct {
	ID          int64
	Name        string
	Description string
}

// ValueType says where a project parameter takes its value from.
type ValueType string

const (
	ValueLiteral    ValueType = "V"
	ValueReferenced ValueType = "R"
)

type Parameter struct {
	Name          string
	DataType      DataType
	DesignDefault string
	Sensitive     bool
	Description   string

	ValueType ValueType
	// Value is the literal value, or the referenced variable name when ValueType is
	// ValueReferenced.
	Value string
}

// Set changes where the parameter takes its value from.
func (p *Parameter) Set(vt ValueType, value string) {
	p.ValueType = vt
	p.Value = value
}

// Referenced reports whether the parameter points at an environment variable.
func (p Parameter) Referenced() bool { return p.ValueType == ValueReferenced }

// Reference binds a project to an environment.
type Reference struct {
	EnvironmentName string
	FolderName      string
}

type Project struct {
	ID           int64
	FolderID     int64
	FolderName   string
	Name         string
	Version      int64
	LastDeployed time.Time

	Parameters []Parameter
	References []Reference
}

// Parameter returns the parameter with the given name, or nil.
func (p *Project) Parameter(name string) *Parameter {
	for i := range p.Parameters {
		if p.Parameters[i].Name == name {
			return &p.Parameters[i]
		}
	}
	return nil
}

// Reference returns the reference to environment env in folder, or nil.
func (p *Project) Reference(env, folder string) *Reference {
	for i := range p.References {
		if p.References[i].EnvironmentName == env && p.References[i].FolderName == folder {
			return &p.References[i]
		}
	}
	return nil
}

// RemoveReference drops every reference to environment env in folder.
func (p *Project) RemoveReference(env, folder string) {
	kept := p.References[:0]
	for _, r := range p.References {
		if r.EnvironmentName == env && r.FolderName == folder {
			continue
		}
		kept = append(kept, r)
	}
	p.References = kept
}

// AddReference adds a reference to environment env in folder. References are not
// updated in place; callers remove an existing one first.
func (p *Project) AddReference(env, folder string) error {
	if p.Reference(env, folder) != nil {
		return Errorf(KindConflict, "project %q already references environment %q in folder %q", p.Name, env, folder)
	}
	p.References = append(p.References, Reference{EnvironmentName: env, FolderName: folder})
	return nil
}

type Variable struct {
	Name        string
	DataType    DataType
	Value       string
	Sensitive   bool
	Description string
}

type Environment struct {
	ID          int64
	FolderID    int64
	FolderName  string
	Name        string
	Description string

	Variables []Variable
}

// Variable returns the variable with the given name, or nil.
func (e *Environment) Variable(name string) *Variable {
	for i := range e.Variables {
		if e.Variables[i].Name == name {
			return &e.Variables[i]
		}
	}
	return nil
}

// AddVariable adds a typed variable to the environment handle.
func (e *Environment) AddVariable(name string, v Value, sensitive bool, description string) error {
	if e.Variable(name) != nil {
		return Errorf(KindConflict, "variable %q already exists in environment %q", name, e.Name)
	}
	e.Variables = append(e.Variables, Variable{
		Name:        name,
		DataType:    v.Type(),
		Value:       v.String(),
		Sensitive:   sensitive,
		Description: description,
	})
	return nil
}

// OperationStatus is the server reported outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "Success"
	StatusFailed  OperationStatus = "Failed"
)

type MessageType string

const (
	MessageInformation MessageType = "Information"
	MessageWarning     MessageType = "Warning"
	MessageError       MessageType = "Error"
)

type Message struct {
	Type MessageType
	Text string
}

// OperationResult is what the server reports back for a long running operation like
// a project deployment.
type OperationResult struct {
	ID       string
	Status   OperationStatus
	Messages []Message
}
