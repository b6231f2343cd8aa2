package common

import (
	"context"
	"fmt"

	"hiredly/internal/errors"
)

// CreateInputFunc builds an operation's input from the contents of the
// command's file arguments, in argument order.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs one orchestrated operation.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// CommandRunner carries what every file-based command needs.
type CommandRunner struct {
	Logger *errors.Logger
	Files  *FileProcessor
	Output *OutputHandler
}

// NewCommandRunner wires a runner that prints to stdout.
func NewCommandRunner(logger *errors.Logger, maxFileSize int64) *CommandRunner {
	return &CommandRunner{
		Logger: logger,
		Files:  NewFileProcessor(logger, maxFileSize),
		Output: NewOutputHandler(logger),
	}
}

// RunCommand reads files, builds the input, runs op and writes its result.
func RunCommand[Input, Output any](
	ctx context.Context,
	runner *CommandRunner,
	cmdConfig CommandConfig,
	files []string,
	createInput CreateInputFunc[Input],
	op OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	if err := PrepareOutput(cmdConfig, runner.Output.GetSupportedFormats()); err != nil {
		return err
	}

	contents, err := runner.Files.ValidateAndReadFiles(files...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := op(ctx, input)
	if err != nil {
		return err
	}

	return runner.Output.HandleOutput(result, cmdConfig)
}

// PrepareOutput checks the output format before any oracle call is spent.
func PrepareOutput(cfg CommandConfig, supportedFormats []string) error {
	if err := ValidateOutputFormat(cfg.OutputFormat, supportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}
	return nil
}
