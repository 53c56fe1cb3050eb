package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
	usecases "mailbridge/internal/usecase"
)

// DefaultConfigPath путь к конфигурации по умолчанию
const DefaultConfigPath = "config.yaml"

// Services сценарии приложения, собранные по загруженной конфигурации
type Services struct {
	Config      *entities.Config
	ConfigRepo  repositories.AppConfigRepository
	CompressPDF *usecases.CompressPDFUseCase
	ProcessPDFs *usecases.ProcessPDFsUseCase
	Upload      *usecases.UploadDocumentUseCase
	Credentials *usecases.ManageCredentialsUseCase
}

// ServicesFactory собирает сервисы по пути к файлу конфигурации
type ServicesFactory func(configPath string) (*Services, error)

// CLIController контроллер командной строки
type CLIController struct {
	open       ServicesFactory
	out        io.Writer
	configPath string
	services   *Services
}

// NewCLIController создает контроллер. Сервисы собираются перед запуском команды.
func NewCLIController(open ServicesFactory, out io.Writer) *CLIController {
	if out == nil {
		out = os.Stdout
	}
	return &CLIController{open: open, out: out}
}

// RootCommand возвращает корневую команду mailbridge
func (c *CLIController) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mailbridge",
		Short:         "Сжатие PDF и загрузка документов в хранилище",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			services, err := c.open(c.configPath)
			if err != nil {
				return err
			}
			c.services = services
			return nil
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", DefaultConfigPath, "Путь к файлу конфигурации")

	root.AddCommand(c.compressCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.uploadCommand())
	root.AddCommand(c.credentialsCommand())
	root.AddCommand(c.configCommand())
	return root
}

func (c *CLIController) compressCommand() *cobra.Command {
	var output, quality string

	cmd := &cobra.Command{
		Use:   "compress <file.pdf>",
		Short: "Сжать один PDF файл",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := c.services.Config.Compression.Quality
			if quality != "" {
				q = entities.Quality(quality)
			}

			result, err := c.services.CompressPDF.Execute(cmd.Context(), args[0], output, q)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, "📊 Результаты сжатия:")
			fmt.Fprintf(c.out, "Уровень: %s, качество: %s\n", result.Tier, result.Quality)
			fmt.Fprintf(c.out, "Исходный размер: %.2f MB\n", float64(result.OriginalSize)/1024/1024)
			fmt.Fprintf(c.out, "Сжатый размер: %.2f MB\n", float64(result.CompressedSize)/1024/1024)
			fmt.Fprintf(c.out, "Сжатие: %.1f%%\n", result.CompressionRatio)
			if result.IsEffective() {
				fmt.Fprintln(c.out, "✅ Сжатие выполнено успешно!")
			} else {
				fmt.Fprintln(c.out, "⚠️ Размер не уменьшился, сохранен исходный документ")
			}
			fmt.Fprintf(c.out, "Файл сохранен как: %s\n", result.OutputFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Путь результата (по умолчанию <имя>_compressed.pdf)")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Пресет качества: screen, ebook, printer, prepress")
	return cmd
}

func (c *CLIController) batchCommand() *cobra.Command {
	var source, target, quality string
	var replace bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Сжать все PDF файлы директории",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *c.services.Config
			if source != "" {
				cfg.Scanner.SourceDirectory = source
			}
			if target != "" {
				cfg.Scanner.TargetDirectory = target
			}
			if cmd.Flags().Changed("replace") {
				cfg.Scanner.ReplaceOriginal = replace
			}
			if quality != "" {
				cfg.Compression.Quality = entities.Quality(quality)
			}

			status, err := c.services.ProcessPDFs.Execute(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Запуск %s: всего %d, успешно %d, пропущено %d, ошибок %d\n",
				status.RunID, status.TotalFiles, status.SuccessfulFiles, status.SkippedFiles, status.FailedFiles)
			if status.FailedFiles > 0 {
				return fmt.Errorf("не удалось обработать файлов: %d", status.FailedFiles)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Исходная директория")
	cmd.Flags().StringVar(&target, "target", "", "Целевая директория")
	cmd.Flags().BoolVar(&replace, "replace", false, "Заменять оригинальные файлы")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Пресет качества")
	return cmd
}

func (c *CLIController) uploadCommand() *cobra.Command {
	var file string
	var processID int64

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Загрузить документ в хранилище",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blob, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("ошибка чтения %s: %w", file, err)
			}

			result, err := c.services.Upload.Execute(cmd.Context(), &entities.UploadRequest{
				Filename:  filepath.Base(file),
				Blob:      blob,
				ProcessID: processID,
			})
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Путь к загружаемому файлу")
	cmd.Flags().Int64Var(&processID, "process-id", 0, "Идентификатор процесса")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLIController) credentialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Учетные данные в таблице LVAL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [group]",
		Short: "Показать параметры групп без значений",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := c.services.Credentials.Groups()
			if len(args) == 1 {
				groups = args
			}
			items := []entities.CredentialMetadata{}
			for _, group := range groups {
				list, err := c.services.Credentials.List(cmd.Context(), group)
				if err != nil {
					return err
				}
				items = append(items, list...)
			}
			return c.printJSON(items)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <group> <key> <value>",
		Short: "Изменить значение параметра",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.services.Credentials.Update(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	})
	return cmd
}

func (c *CLIController) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Файл конфигурации",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Записать действующую конфигурацию в файл --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return fmt.Errorf("файл %s уже существует, используйте --force", c.configPath)
			}
			if err := c.services.ConfigRepo.Save(c.configPath, c.services.Config); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Конфигурация сохранена: %s\n", c.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Перезаписать существующий файл")
	cmd.AddCommand(initCmd)
	return cmd
}

func (c *CLIController) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
