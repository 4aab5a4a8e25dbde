package launcher

import (
	"fmt"
	"os"
	"os/exec"
)

// Editor opens files in the user's preferred editor
type Editor struct {
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// NewEditor creates a new editor opener
func NewEditor() *Editor {
	return &Editor{lookPath: exec.LookPath, getenv: os.Getenv}
}

// Command returns an exec.Cmd for opening path in the editor.
// It suits bubbletea's ExecProcess as well as a plain Run.
func (e *Editor) Command(path string) (*exec.Cmd, error) {
	editor := e.find()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Open runs the editor on path and waits for it to exit
func (e *Editor) Open(path string) error {
	cmd, err := e.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (e *Editor) find() string {
	if editor := e.getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := e.getenv("VISUAL"); visual != "" {
		return visual
	}
	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := e.lookPath(editor); err == nil {
			return path
		}
	}
	return ""
}
