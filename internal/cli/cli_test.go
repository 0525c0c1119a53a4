package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/exam-room-scheduler/internal/app"
	"github.com/examhub/exam-room-scheduler/internal/application/command"
	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/pkg/logger"
)

type stubSource struct {
	roomsErr error
}

func (s stubSource) FetchRoster(context.Context) ([]catalog.Person, error) {
	return []catalog.Person{{InstitutionNumber: "BN-1", RosterNumber: "2201", Name: "Ana", Role: "assistant"}}, nil
}

func (s stubSource) FetchRooms(context.Context) ([]catalog.Room, error) {
	if s.roomsErr != nil {
		return nil, s.roomsErr
	}
	return []catalog.Room{{Number: "R101", Campus: "Anggrek", Capacity: 40}}, nil
}

func (s stubSource) FetchSubjects(context.Context) ([]catalog.Subject, error) {
	return []catalog.Subject{{Code: "COMP6048", Name: "Algorithms"}}, nil
}

func (s stubSource) FetchEnrollments(context.Context) ([]catalog.Enrollment, error) {
	return nil, nil
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "examhub.yaml")
	body := fmt.Sprintf(`database:
  driver: sqlite
  sqlite_path: %s
catalog:
  url: http://catalog.invalid/graphql
  max_attempts: 1
session:
  bcrypt_cost: 4
`, filepath.Join(dir, "examhub.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, src command.CatalogSource, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(&RootOptions{AppOptions: app.Options{
		Logger: logger.Discard(),
		Source: src,
	}})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	out, err := execute(t, stubSource{}, "migrate", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "schema up to date (sqlite)\n", out)
}

func TestSyncCommand_PrintsReport(t *testing.T) {
	out, err := execute(t, stubSource{}, "sync", "-c", writeConfig(t))
	require.NoError(t, err)

	var report command.SyncReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Stages, 4)
	assert.Equal(t, command.StageRoster, report.Stages[0].Stage)
	assert.Equal(t, 1, report.Stages[0].Upserted)
	assert.Empty(t, report.FailedStage)
}

func TestSyncCommand_FailureExitCode(t *testing.T) {
	out, err := execute(t, stubSource{roomsErr: errors.New("catalog down")}, "sync", "-c", writeConfig(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.ErrorContains(t, err, "catalog down")

	var report command.SyncReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, command.StageRooms, report.FailedStage)
}

func TestExportCommand(t *testing.T) {
	cfgPath := writeConfig(t)
	target := filepath.Join(t.TempDir(), "schedule.xlsx")

	out, err := execute(t, stubSource{}, "export", "-c", cfgPath, "--out", target)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("wrote 0 sessions to %s\n", target), out)
	assert.FileExists(t, target)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, stubSource{}, "migrate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, ExitCode(fmt.Errorf("outer: %w", wrapExit(ExitCommandError, "bad", nil))))
}
