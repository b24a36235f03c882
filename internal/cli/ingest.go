package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/viant/videostore/ingest"
	"github.com/viant/videostore/source"
	"github.com/viant/videostore/source/twelvelabs"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		videoID   string
		firstOnly bool
		taskFile  string
	)
	cmd := &cobra.Command{
		Use:   "ingest TASK_ID",
		Short: "Store the embeddings of a finished Twelve Labs embed task",
		Long: `Fetch an embed-v2 task and append each of its embeddings with the video
duration, input URL, asset type and task id as metadata. With --task-file the
task document is read from disk instead of the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID := args[0]
			var src source.EmbeddingSource
			if taskFile != "" {
				tasks, err := loadTaskFile(taskFile, taskID)
				if err != nil {
					return err
				}
				src = tasks
			} else {
				client, err := a.twelveLabs()
				if err != nil {
					return err
				}
				src = client
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := ingest.Task(ctx, src, s, taskID, ingest.Options{
				VideoID:   videoID,
				FirstOnly: firstOnly,
				Logger:    &a.logger,
			})
			if report != nil && report.Added() > 0 {
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "stored %d embeddings for video %s (%s); %d total\n",
					report.Added(), report.VideoID, strings.Join(report.Types, ", "), s.Len())
			}
			return err
		},
	}
	cmd.Flags().StringVar(&videoID, "video-id", "", "video id to record (default: the task id)")
	cmd.Flags().BoolVar(&firstOnly, "first", false, "store only the first embedding of the task")
	cmd.Flags().StringVar(&taskFile, "task-file", "", "read the task JSON from this file")
	return cmd
}

func loadTaskFile(path, taskID string) (source.Tasks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	task, err := twelvelabs.DecodeTask(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	task.ID = taskID
	return source.Tasks{taskID: task}, nil
}

func (a *app) twelveLabs() (*twelvelabs.Client, error) {
	tl := a.cfg.TwelveLabs
	client, err := twelvelabs.New(tl.APIKey,
		twelvelabs.WithBaseURL(tl.BaseURL),
		twelvelabs.WithTimeout(tl.Timeout),
		twelvelabs.WithModel(tl.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w (set TL_API_KEY)", err)
	}
	return client, nil
}
