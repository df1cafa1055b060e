package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/energy-sched/sim/record"
	"github.com/inference-sim/energy-sched/sim/report"
	"github.com/inference-sim/energy-sched/sim/server"
	"github.com/inference-sim/energy-sched/sim/workload"
)

var (
	serveOpts    engineOptions
	serveInput   string
	serveResults []string
	serveDB      string
	servePort    int
	serveOpen    bool
)

// serveCmd exposes results over the HTTP JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve run results over an HTTP JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.New(nil, nil)

		for _, path := range serveResults {
			doc, err := readResultFile(path)
			if err != nil {
				return err
			}
			srv.Add(doc)
		}

		if serveInput != "" {
			cfg, err := serveOpts.engineConfig(cmd)
			if err != nil {
				return err
			}
			procs, err := workload.LoadProcesses(serveInput)
			if err != nil {
				return err
			}
			result, err := simulate(procs, cfg)
			if err != nil {
				return err
			}
			doc := report.NewResultDocument(cfg, result)
			srv.Add(doc)
			logrus.Infof("Simulated %s as run %s", serveInput, doc.RunID)
		}

		if serveDB != "" {
			rec, err := record.Open(serveDB)
			if err != nil {
				return err
			}
			defer rec.Close()
			srv.AttachStored(rec)
		}

		listener, url, err := server.Listen(servePort)
		if err != nil {
			return err
		}
		if serveOpen {
			if err := browser.OpenURL(url + "/api/runs"); err != nil {
				logrus.Warnf("could not open browser: %v", err)
			}
		}
		return srv.Serve(listener)
	},
}

func readResultFile(path string) (*report.ResultDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result %s: %w", path, err)
	}
	defer file.Close()
	return report.ReadJSON(file)
}

func init() {
	serveOpts.addFlags(serveCmd)

	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "Simulate this workload file and serve the result")
	serveCmd.Flags().StringSliceVar(&serveResults, "result", nil, "Result documents written by run --json")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite recording to list under /api/stored")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (0 picks a free port)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the run list in a browser")
}
