package compressors_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// fakeRewriter возвращает заданный результат и запоминает вызовы
type fakeRewriter struct {
	mu     sync.Mutex
	calls  int
	inputs [][]byte
	opts   []entities.RewriteOptions
	out    func(in []byte) []byte
	err    error
}

func (f *fakeRewriter) Rewrite(_ context.Context, rs io.ReadSeeker, opts entities.RewriteOptions) ([]byte, error) {
	in, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, in)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.out == nil {
		return in, nil
	}
	return f.out(in), nil
}

func (f *fakeRewriter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// halve возвращает первую половину входа
func halve(in []byte) []byte { return in[:len(in)/2] }

// grow возвращает вход с добавленными байтами
func grow(in []byte) []byte { return append(append([]byte{}, in...), []byte("padding")...) }

// fakeRasterizer записывает в выходной файл результат transform от входного файла
type fakeRasterizer struct {
	mu        sync.Mutex
	calls     int
	paths     []string
	transform func(in []byte) []byte
	err       error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, inputPath, outputPath string, _ entities.Quality) error {
	f.mu.Lock()
	f.calls++
	f.paths = append(f.paths, inputPath, outputPath)
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	in, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	out := in
	if f.transform != nil {
		out = f.transform(in)
	}
	return os.WriteFile(outputPath, out, 0o600)
}

func (f *fakeRasterizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeExecutor подменяет запуск внешнего процесса
type fakeExecutor struct {
	mu      sync.Mutex
	name    string
	args    []string
	run     func(ctx context.Context, args []string) (repositories.CommandResult, error)
	active  int
	maxSeen int
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) (repositories.CommandResult, error) {
	f.mu.Lock()
	f.name = name
	f.args = args
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.run == nil {
		return repositories.CommandResult{}, nil
	}
	return f.run(ctx, args)
}

// outputFileArg извлекает путь из -sOutputFile=
func outputFileArg(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-sOutputFile=") {
			return strings.TrimPrefix(a, "-sOutputFile=")
		}
	}
	return ""
}

// payload возвращает буфер заданного размера
func payload(size int) []byte {
	return bytes.Repeat([]byte{'x'}, size)
}

// requireEmptyDir проверяет, что во временном каталоге не осталось файлов
func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "scratch files left behind")
}

// buildPDF собирает корректный одностраничный PDF.
// Содержимое страницы дополняется строками текста до padding байт.
func buildPDF(padding int) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 12 Tf 72 720 Td (MailBridge) Tj ET\n")
	line := "BT /F1 8 Tf 72 100 Td (Lorem ipsum dolor sit amet, consectetur adipiscing elit) Tj ET\n"
	for content.Len() < padding {
		content.WriteString(line)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
