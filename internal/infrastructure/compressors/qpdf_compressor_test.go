package compressors_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
	"mailbridge/internal/infrastructure/compressors"
)

func TestQPDFArgs(t *testing.T) {
	tests := []struct {
		name string
		opts entities.RewriteOptions
		want []string
	}{
		{
			name: "Default options",
			opts: entities.DefaultRewriteOptions(),
			want: []string{"--compress-streams=y", "--recompress-flate", "--linearize", "--object-streams=generate", "in.pdf", "out.pdf"},
		},
		{
			name: "Everything off",
			opts: entities.RewriteOptions{},
			want: []string{"--compress-streams=n", "--object-streams=preserve", "in.pdf", "out.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compressors.QPDFArgs(tt.opts, "in.pdf", "out.pdf"))
		})
	}
}

// halvingQPDF записывает в выходной файл первую половину входного
func halvingQPDF(_ context.Context, args []string) (repositories.CommandResult, error) {
	in, err := os.ReadFile(args[len(args)-2])
	if err != nil {
		return repositories.CommandResult{}, err
	}
	return repositories.CommandResult{}, os.WriteFile(args[len(args)-1], halve(in), 0o600)
}

func newQPDF(t *testing.T, runner *fakeExecutor) (*compressors.QPDFRewriter, string) {
	t.Helper()
	dir := t.TempDir()
	return compressors.NewQPDFRewriter("qpdf", runner, compressors.NewScratchSpace(dir), time.Second, nil), dir
}

func TestQPDFRewriter_RewritesThroughScratchFiles(t *testing.T) {
	runner := &fakeExecutor{run: halvingQPDF}
	rw, dir := newQPDF(t, runner)

	data := payload(4096)
	out, err := rw.Rewrite(context.Background(), bytes.NewReader(data), entities.DefaultRewriteOptions())
	require.NoError(t, err)
	assert.Equal(t, halve(data), out)

	assert.Equal(t, "qpdf", runner.name)
	require.Len(t, runner.args, 6)
	assert.Equal(t, []string{"--compress-streams=y", "--recompress-flate", "--linearize", "--object-streams=generate"}, runner.args[:4])
	assert.Equal(t, dir, filepath.Dir(runner.args[4]))
	assert.NotEqual(t, runner.args[4], runner.args[5])
	requireEmptyDir(t, dir)
}

func TestQPDFRewriter_UsesFileOnDiskDirectly(t *testing.T) {
	runner := &fakeExecutor{run: halvingQPDF}
	rw, dir := newQPDF(t, runner)

	path := filepath.Join(t.TempDir(), "gs-output.pdf")
	require.NoError(t, os.WriteFile(path, payload(2048), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err := rw.Rewrite(context.Background(), f, entities.DefaultRewriteOptions())
	require.NoError(t, err)
	assert.Len(t, out, 1024)
	assert.Equal(t, path, runner.args[4])
	requireEmptyDir(t, dir)
}

func TestQPDFRewriter_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		wantErr  bool
		wantTool bool
	}{
		{"Warnings are accepted", 3, false, false},
		{"Unparsable input", 2, true, false},
		{"Unexpected exit code", 137, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeExecutor{run: func(ctx context.Context, args []string) (repositories.CommandResult, error) {
				if _, err := halvingQPDF(ctx, args); err != nil {
					return repositories.CommandResult{}, err
				}
				return repositories.CommandResult{ExitCode: tt.exitCode, Stderr: "qpdf: details"}, nil
			}}
			rw, dir := newQPDF(t, runner)

			_, err := rw.Rewrite(context.Background(), bytes.NewReader(payload(1024)), entities.DefaultRewriteOptions())
			if !tt.wantErr {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantTool, errors.Is(err, entities.ErrExternalToolFailure))
			}
			requireEmptyDir(t, dir)
		})
	}
}

func TestQPDFRewriter_StartFailureIsToolFailure(t *testing.T) {
	runner := &fakeExecutor{run: func(context.Context, []string) (repositories.CommandResult, error) {
		return repositories.CommandResult{ExitCode: -1}, errors.New("executable file not found")
	}}
	rw, _ := newQPDF(t, runner)

	_, err := rw.Rewrite(context.Background(), bytes.NewReader(payload(1024)), entities.DefaultRewriteOptions())
	assert.ErrorIs(t, err, entities.ErrExternalToolFailure)
}

func TestQPDFRewriter_CancelledDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeExecutor{run: func(runCtx context.Context, _ []string) (repositories.CommandResult, error) {
		cancel()
		<-runCtx.Done()
		return repositories.CommandResult{ExitCode: -1}, runCtx.Err()
	}}
	rw, dir := newQPDF(t, runner)

	_, err := rw.Rewrite(ctx, bytes.NewReader(payload(1024)), entities.DefaultRewriteOptions())
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, entities.ErrExternalToolFailure)
	requireEmptyDir(t, dir)
}

func TestTieredCompressor_LightTierWithQPDFClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		result   repositories.CommandResult
		runErr   error
		wantKind error
	}{
		{"Unparsable input", repositories.CommandResult{ExitCode: 2}, nil, entities.ErrMalformedDocument},
		{"Missing binary", repositories.CommandResult{ExitCode: -1}, errors.New("not found"), entities.ErrExternalToolFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeExecutor{run: func(context.Context, []string) (repositories.CommandResult, error) {
				return tt.result, tt.runErr
			}}
			dir := t.TempDir()
			scratch := compressors.NewScratchSpace(dir)
			rw := compressors.NewQPDFRewriter("qpdf", runner, scratch, time.Second, nil)
			c := compressors.NewTieredCompressor(rw, &fakeRasterizer{}, scratch, nil)

			_, _, err := c.Compress(context.Background(), payload(200*1024), entities.QualityEbook)
			require.ErrorIs(t, err, tt.wantKind)

			var ce *entities.CompressionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.Equal(t, entities.TierLight, ce.Tier)
			requireEmptyDir(t, dir)
		})
	}
}

func TestTieredCompressor_LightTierWithInstalledQPDF(t *testing.T) {
	if _, err := exec.LookPath("qpdf"); err != nil {
		t.Skip("qpdf не установлен")
	}
	dir := t.TempDir()
	scratch := compressors.NewScratchSpace(dir)
	rw := compressors.NewQPDFRewriter("qpdf", compressors.NewExecExecutor(0), scratch, 30*time.Second, nil)
	c := compressors.NewTieredCompressor(rw, &fakeRasterizer{}, scratch, nil)

	data := buildPDF(150 * 1024)
	out, n, err := c.Compress(context.Background(), data, entities.QualityEbook)
	require.NoError(t, err)
	assert.Less(t, n, len(data)/4)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	requireEmptyDir(t, dir)
}
