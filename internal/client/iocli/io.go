// Package iocli - ввод/вывод терминала для команд CLI.
package iocli

// IO - то, что командам нужно от терминала
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
