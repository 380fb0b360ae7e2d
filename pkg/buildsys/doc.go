// Package buildsys implements the task engine behind the wheelhouse CLI.
// Tasks carry dependencies, input/output patterns and shell commands; the
// runner skips tasks whose outputs are newer than their inputs and executes
// everything else through mvdan.cc/sh. Projects can declare extra tasks in a
// tasks.star Starlark script.
package buildsys
