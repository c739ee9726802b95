// Command segment replays a recorded episode and prints the semantic
// events detected in it. Without -db it replays a built-in demo episode.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	segmentation "github.com/robosemantics/episode-segmenter/core"
	"github.com/robosemantics/episode-segmenter/core/annotation"
	"github.com/robosemantics/episode-segmenter/core/replay"
	"github.com/robosemantics/episode-segmenter/core/replay/sqlitesource"
	"github.com/robosemantics/episode-segmenter/core/world"
)

const defaultBodyRadius = 0.1

func main() {
	var (
		dbPath   = flag.String("db", "", "path to a recorded episode database (omit to use the built-in demo)")
		episode  = flag.String("episode", demoEpisodeID, "episode id to replay")
		listen   = flag.String("listen", "", "serve the annotation websocket on this address (e.g. :8080)")
		realtime = flag.Bool("realtime", true, "replay samples at their recorded pace")
		handPat  = flag.String("hand", "hand", "substring identifying hand objects by name")
		tui      = flag.Bool("tui", false, "show the timeline in a live terminal ui")
	)
	flag.Parse()

	if err := run(*dbPath, *episode, *listen, *handPat, *realtime, *tui); err != nil {
		fmt.Fprintln(os.Stderr, "segment:", err)
		os.Exit(1)
	}
}

func run(dbPath, episode, listen, handPattern string, realtime, tui bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var source replay.SampleSource = demoSource()
	if dbPath != "" {
		db, err := sqlitesource.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		source = db
	}

	scene := world.NewKinematicScene(defaultBodyRadius)

	var playerOpts []replay.PlayerOption
	if realtime {
		playerOpts = append(playerOpts, replay.WithRealTime())
	}
	player := replay.NewRecordedPlayer(scene, source, playerOpts...)

	var sinks multiSink
	if listen != "" {
		hub := annotation.NewHub()
		defer hub.Close()
		go func() {
			if err := http.ListenAndServe(listen, hub.Handler()); err != nil {
				fmt.Fprintln(os.Stderr, "segment: annotation server:", err)
			}
		}()
		sinks = append(sinks, hub)
	}

	var feed *chanSink
	if tui {
		feed = newChanSink()
		sinks = append(sinks, feed)
	} else {
		sinks = append(sinks, printSink{w: os.Stdout})
	}

	segmenter := segmentation.NewSegmenter(scene, player,
		segmentation.WithSink(sinks),
		segmentation.WithHandPattern(handPattern),
	)

	if !tui {
		return segmenter.Run(ctx, episode)
	}

	result := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result <- segmenter.Run(ctx, episode)
	}()

	program := tea.NewProgram(newTimelineModel(feed.ch, result), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("timeline ui: %w", err)
	}
	// Quitting the ui interrupts a still-running segmentation.
	stop()
	<-done
	return nil
}
