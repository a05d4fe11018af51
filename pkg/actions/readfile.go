package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/document"
	"github.com/entrhq/pilot/pkg/security/filegate"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	ReadNotAllowedMessage = "ERROR: You are not allowed to read this file"
	FileNotExistMessage   = "ERROR: That file does not exist"
)

// ReadFileArgs are the arguments of read_file.
type ReadFileArgs struct {
	Filename string `json:"filename"`
}

func (a *ReadFileArgs) Validate() error {
	a.Filename = strings.TrimSpace(a.Filename)
	if a.Filename == "" {
		return types.NewValidationError("filename", "ERROR: Missing parameter filename")
	}
	return nil
}

// ReadFile reads a workspace file after the operator allows it.
type ReadFile struct {
	files    FileReader
	prompter approval.Prompter
	settings Settings
}

// NewReadFile creates the read_file action.
func NewReadFile(files FileReader, prompter approval.Prompter, settings Settings) *ReadFile {
	return &ReadFile{files: files, prompter: prompter, settings: settings}
}

func (a *ReadFile) Name() string { return "read_file" }
func (a *ReadFile) Kind() Kind   { return KindReadFile }

func (a *ReadFile) Description() string {
	return "Read the contents of a file that the user has provided to you"
}

func (a *ReadFile) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "The filename to read, e.g. file.txt or path/to/file.txt",
			},
		},
		[]string{"filename"},
	)
}

func (a *ReadFile) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[ReadFileArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.files == nil {
		return Result{Message: ReadNotAllowedMessage}, nil
	}

	if _, err := a.files.CheckRead(args.Filename); err != nil {
		debugLog.Warnf("Read of %s rejected: %v", args.Filename, err)
		return Result{Message: ReadNotAllowedMessage}, nil
	}

	if !a.allowed(ctx, args.Filename) {
		return Result{Message: ReadNotAllowedMessage}, nil
	}

	debugLog.Infof("Reading file %s", args.Filename)
	if !a.files.Exists(args.Filename) {
		return Result{Message: FileNotExistMessage}, nil
	}
	text, err := a.files.ReadText(args.Filename)
	if err != nil {
		debugLog.Errorf("Failed to read %s: %v", args.Filename, err)
		if errors.Is(err, filegate.ErrNotExist) {
			return Result{Message: FileNotExistMessage}, nil
		}
		return Result{Message: ReadNotAllowedMessage}, nil
	}
	return Result{Message: document.Truncate(text, a.settings.ContextLimit)}, nil
}

func (a *ReadFile) allowed(ctx context.Context, filename string) bool {
	if a.settings.Autopilot {
		return true
	}
	if a.prompter == nil {
		return false
	}
	ok, err := approval.Confirm(ctx, a.prompter, fmt.Sprintf("\nGPT: I want to read the file %s\nDo you allow this? (y/n): ", filename))
	if err != nil {
		debugLog.Warnf("No answer to read request for %s: %v", filename, err)
		return false
	}
	return ok
}
