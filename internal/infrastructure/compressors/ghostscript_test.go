package compressors_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
	"mailbridge/internal/infrastructure/compressors"
)

func TestGhostscriptArgs_ExactOrder(t *testing.T) {
	args := compressors.GhostscriptArgs(entities.QualityEbook, "/tmp/in.pdf", "/tmp/out.pdf")

	assert.Equal(t, []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-dNOPAUSE",
		"-dBATCH",
		"-dQUIET",
		"-dAutoRotatePages=/None",
		"-dDetectDuplicateImages=true",
		"-dDownsampleColorImages=true",
		"-dColorImageResolution=150",
		"-sOutputFile=/tmp/out.pdf",
		"/tmp/in.pdf",
	}, args)
}

func TestGhostscriptArgs_UnknownQualityPassedThrough(t *testing.T) {
	args := compressors.GhostscriptArgs("default", "in", "out")
	assert.Equal(t, "-dPDFSETTINGS=/default", args[2])
}

func writeOutput(content string) func(context.Context, []string) (repositories.CommandResult, error) {
	return func(_ context.Context, args []string) (repositories.CommandResult, error) {
		if err := os.WriteFile(outputFileArg(args), []byte(content), 0o600); err != nil {
			return repositories.CommandResult{}, err
		}
		return repositories.CommandResult{ExitCode: 0}, nil
	}
}

func TestGhostscriptRasterizer_Success(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.pdf"), filepath.Join(dir, "out.pdf")

	exec := &fakeExecutor{run: writeOutput("%PDF-1.4 rasterized")}
	g := compressors.NewGhostscriptRasterizer("/usr/bin/gs", exec, time.Second, 1, nil)

	require.NoError(t, g.Rasterize(context.Background(), in, out, entities.QualityScreen))
	assert.Equal(t, "/usr/bin/gs", exec.name)
	assert.Equal(t, compressors.GhostscriptArgs(entities.QualityScreen, in, out), exec.args)
}

func TestGhostscriptRasterizer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		run     func(context.Context, []string) (repositories.CommandResult, error)
		wantMsg string
	}{
		{
			name: "Non-zero exit",
			run: func(context.Context, []string) (repositories.CommandResult, error) {
				return repositories.CommandResult{ExitCode: 1, Stderr: "  Unrecoverable error\n"}, nil
			},
			wantMsg: "Unrecoverable error",
		},
		{
			name: "Missing binary",
			run: func(context.Context, []string) (repositories.CommandResult, error) {
				return repositories.CommandResult{ExitCode: -1}, errors.New("executable file not found")
			},
			wantMsg: "executable file not found",
		},
		{
			name: "No output file",
			run: func(context.Context, []string) (repositories.CommandResult, error) {
				return repositories.CommandResult{}, nil
			},
			wantMsg: "не создал",
		},
		{
			name:    "Empty output file",
			run:     writeOutput(""),
			wantMsg: "пустой",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			g := compressors.NewGhostscriptRasterizer("gs", &fakeExecutor{run: tt.run}, time.Second, 1, nil)

			err := g.Rasterize(context.Background(), filepath.Join(dir, "in.pdf"), filepath.Join(dir, "out.pdf"), entities.QualityEbook)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGhostscriptRasterizer_Timeout(t *testing.T) {
	exec := &fakeExecutor{run: func(ctx context.Context, _ []string) (repositories.CommandResult, error) {
		<-ctx.Done()
		return repositories.CommandResult{ExitCode: -1}, ctx.Err()
	}}
	g := compressors.NewGhostscriptRasterizer("gs", exec, 50*time.Millisecond, 1, nil)

	start := time.Now()
	err := g.Rasterize(context.Background(), "in", "out", entities.QualityEbook)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGhostscriptRasterizer_BoundsConcurrency(t *testing.T) {
	release := make(chan struct{})
	exec := &fakeExecutor{}
	exec.run = func(_ context.Context, args []string) (repositories.CommandResult, error) {
		<-release
		return writeOutput("%PDF")(context.Background(), args)
	}
	g := compressors.NewGhostscriptRasterizer("gs", exec, 5*time.Second, 2, nil)

	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := filepath.Join(dir, "out-"+string(rune('a'+i))+".pdf")
			assert.NoError(t, g.Rasterize(context.Background(), "in", out, entities.QualityEbook))
		}(i)
	}

	require.Eventually(t, func() bool {
		exec.mu.Lock()
		defer exec.mu.Unlock()
		return exec.active == 2
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, 2, exec.maxSeen)
}

func TestGhostscriptRasterizer_WaitingForSlotHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	exec := &fakeExecutor{run: func(context.Context, []string) (repositories.CommandResult, error) {
		<-release
		return repositories.CommandResult{}, nil
	}}
	g := compressors.NewGhostscriptRasterizer("gs", exec, 5*time.Second, 1, nil)

	go func() { _ = g.Rasterize(context.Background(), "in", "out", entities.QualityEbook) }()
	require.Eventually(t, func() bool {
		exec.mu.Lock()
		defer exec.mu.Unlock()
		return exec.active == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Rasterize(ctx, "in", "out2", entities.QualityEbook)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
