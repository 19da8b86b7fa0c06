package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository/memory"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/media"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/transcript"
	pkgai "github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/audio"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
)

const exhaustPoll = 200 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "transcribe",
		Short:        "Offline tools for the capture pipeline",
		SilenceUsage: true,
	}
	root.AddCommand(newFileCmd(), newChunksCmd())
	return root
}

type fileOptions struct {
	display  string
	mic      string
	meeting  string
	interval time.Duration
	verbose  bool
}

func newFileCmd() *cobra.Command {
	opts := fileOptions{}
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Replay recorded audio through the chunked transcription pipeline",
		Long: "Replays a display and/or microphone recording (.wav or raw 16-bit .pcm) at real-time pace,\n" +
			"transcribing each window like a live session. With --meeting the segments are stored\n" +
			"in the database and the transcript is completed at the end.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.display == "" && opts.mic == "" {
				return fmt.Errorf("at least one of --display or --mic is required")
			}
			return runFile(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.display, "display", "", "display (tab) audio file")
	cmd.Flags().StringVar(&opts.mic, "mic", "", "microphone audio file")
	cmd.Flags().StringVar(&opts.meeting, "meeting", "", "meeting id to store the transcript under")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "chunk window, defaults to CAPTURE_CHUNK_INTERVAL")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline events")
	return cmd
}

func runFile(ctx context.Context, opts fileOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	defer logger.Sync()

	transcriber, err := pkgai.NewTranscriber(&cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	var repo repositories.TranscriptRepository = memory.NewTranscriptRepository()
	if opts.meeting != "" {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.CloseDB(db)
		repo = repository.NewTranscriptRepository(db)
	}
	hub := cache.NewMemoryHub()
	defer hub.Close()
	transcripts := transcript.NewService(repo, hub, logger, nil)

	interval := cfg.Capture.ChunkInterval
	if opts.interval > 0 {
		interval = opts.interval
	}
	format := audio.Format{SampleRate: cfg.Capture.SampleRate, Channels: 1, BitsPerSample: 16}
	devices := media.NewFileDevices(opts.display, opts.mic, format, clock.New())

	pipeline := recording.NewPipeline(devices, transcriber, recording.PipelineConfig{
		ChunkInterval: interval,
		MinChunkBytes: cfg.Capture.MinChunkBytes,
		Format:        format,
		Provider:      cfg.AI.TranscriptionProvider,
		Logger:        logger,
	})

	onSegments := func(segs []entities.TranscriptSegment) {
		for _, s := range segs {
			fmt.Printf("[%s] %s\n", s.Timestamp.Format(time.TimeOnly), s.Text)
		}
		if opts.meeting == "" {
			return
		}
		if err := transcripts.Append(context.Background(), opts.meeting, segs, false); err != nil {
			logger.Error("❌ Failed to store segment", zap.Error(err))
		}
	}

	if err := pipeline.Start(context.WithoutCancel(ctx), onSegments); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	log.Printf("🎙️  Replaying %s of audio", devices.Duration().Round(time.Second))

	poll := time.NewTicker(exhaustPoll)
	defer poll.Stop()
replay:
	for !devices.Exhausted() {
		select {
		case <-ctx.Done():
			log.Println("🛑 Interrupted, flushing last chunk...")
			break replay
		case <-poll.C:
		}
	}

	pipeline.Stop()
	if err := pipeline.Wait(context.Background()); err != nil {
		return fmt.Errorf("failed waiting for pending chunks: %w", err)
	}

	if opts.meeting != "" {
		if err := transcripts.Append(context.Background(), opts.meeting, []entities.TranscriptSegment{}, true); err != nil {
			return fmt.Errorf("failed to complete transcript: %w", err)
		}
		log.Printf("✅ Transcript stored for meeting %s", opts.meeting)
	}
	return nil
}

func newChunksCmd() *cobra.Command {
	var meetingID string
	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "List archived audio chunks of a meeting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := storage.NewMinIOClient(cmd.Context(), &cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to connect to object storage: %w", err)
			}
			keys, err := store.ListFiles(cmd.Context(), storage.ChunkPrefix(meetingID))
			if err != nil {
				return fmt.Errorf("failed to list chunks: %w", err)
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			log.Printf("📦 %d chunk(s) archived for meeting %s", len(keys), meetingID)
			return nil
		},
	}
	cmd.Flags().StringVar(&meetingID, "meeting", "", "meeting id")
	_ = cmd.MarkFlagRequired("meeting")
	return cmd
}
