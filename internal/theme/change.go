package theme

// Op names a registry mutation.
type Op string

const (
	OpInit         Op = "init"
	OpAdd          Op = "add"
	OpUpdate       Op = "update"
	OpRemove       Op = "remove"
	OpSetDefault   Op = "set-default"
	OpAddUtilities Op = "add-utilities"
)

// Change is published after every successful mutation.
type Change struct {
	ID   string
	Op   Op
	Name string
}
