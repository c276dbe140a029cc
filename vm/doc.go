// Package vm is the Interpreter Driver: a budgeted pump that advances a
// job's evaluation stack by calling the step-handler registered for the
// top activation's ast.Kind, cooperating with the reactor by returning
// control once the job's step budget is exhausted.
package vm
