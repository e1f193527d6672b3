package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docsnap/internal/model"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("SNAPSHOT_NOT_FOUND", "snapshot 3 not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "SNAPSHOT_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "snapshot 3 not found", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"path": "/work/tex.png"}
	err := formatter.Error("PARTIAL_RESTORE", "restore incomplete", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Saved snapshot 1")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Saved snapshot 1")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("SNAPSHOT_NOT_FOUND", "snapshot 3 not found", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [SNAPSHOT_NOT_FOUND]")
	assert.Contains(t, buf.String(), "snapshot 3 not found")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"path": "/work/tex.png"}
	err := formatter.Error("PARTIAL_RESTORE", "restore incomplete", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [PARTIAL_RESTORE]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantLog  bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Checked %d file(s)", 3)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Checked 3 file(s)")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "CORRUPT_BLOB",
		Message: "verification failed",
		Details: []string{"tex.png"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "CORRUPT_BLOB", decoded.Code)
	assert.Equal(t, "verification failed", decoded.Message)
}

func TestOutputFormatter_ReportError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := model.NewPartialRestore(4, []string{"/work/a.png", "/work/b.png"}, errors.New("disk full"))
	err := formatter.ReportError(wrapOperationError("load failed", cause))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Paths []string `json:"paths"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "PARTIAL_RESTORE", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "load failed")
	assert.Equal(t, []string{"/work/a.png", "/work/b.png"}, resp.Error.Details.Paths)
}

func TestOutputFormatter_ReportPlainError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.ReportError(fmt.Errorf("accepts 2 arg(s), received 1")))
	assert.Equal(t, "Error [COMMAND_ERROR]: accepts 2 arg(s), received 1\n", buf.String())
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{wrapOperationError("x", model.NewDocumentNotSaved("")), ExitCommandError},
		{wrapOperationError("x", model.NewSnapshotNotFound(1)), ExitCommandError},
		{wrapOperationError("x", model.NewStoreUnwritable("/s.ver", errors.New("locked"))), ExitCommandError},
		{wrapOperationError("x", model.NewSchemaMismatch("/s.ver", 7, 1)), ExitCommandError},
		{wrapOperationError("x", model.NewWriteFailure("save", errors.New("io"))), ExitFailure},
		{wrapOperationError("x", model.NewUnreadableDependency("/a", errors.New("io"))), ExitFailure},
		{wrapOperationError("x", model.NewPartialRestore(1, []string{"/a"}, errors.New("io"))), ExitFailure},
		{wrapOperationError("x", model.NewCorruptBlob(1, "a", errors.New("digest"))), ExitFailure},
		{NewExitError(ExitFailure, "x"), ExitFailure},
		{errors.New("unknown flag: --nope"), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
