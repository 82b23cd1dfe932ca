package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/restoreos/restored/internal/logger"
	iplist "github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/metrics"
	metricsprom "github.com/restoreos/restored/pkg/metrics/prometheus"
	"github.com/restoreos/restored/pkg/restore"
	"github.com/restoreos/restored/pkg/session"
)

var (
	restoreUDID         string
	restoreIPSW         string
	restoreErase        bool
	restoreUpdate       bool
	restoreCustom       bool
	restoreExclude      bool
	restoreIgnoreErrors bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Drive one device-restore session to completion",
	Long: `Drive one restore-mode session end to end: load a BuildManifest.plist
from an IPSW, negotiate with the on-device restore daemon, answer its data
requests, and follow its progress/status stream until the session finishes.

Examples:
  restored restore --udid 00008110-XXXXXXXXXXXXXXXX --ipsw iPhone.ipsw --erase
  restored restore --udid 00008110-XXXXXXXXXXXXXXXX --ipsw iPhone.ipsw --update --ignore-errors`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVar(&restoreUDID, "udid", "", "UDID of the device in restore mode (required)")
	restoreCmd.Flags().StringVar(&restoreIPSW, "ipsw", "", "path to the IPSW archive to restore from (required)")
	restoreCmd.Flags().BoolVar(&restoreErase, "erase", false, "select the Erase build identity (mutually exclusive with --update)")
	restoreCmd.Flags().BoolVar(&restoreUpdate, "update", false, "select the Update build identity (mutually exclusive with --erase)")
	restoreCmd.Flags().BoolVar(&restoreCustom, "custom", false, "enable custom-firmware mode (spec.md §4.4)")
	restoreCmd.Flags().BoolVar(&restoreExclude, "exclude", false, "skip nonessential components (spec.md §4.4)")
	restoreCmd.Flags().BoolVar(&restoreIgnoreErrors, "ignore-errors", false, "continue the session past non-fatal handler errors")

	restoreCmd.MarkFlagRequired("udid")
	restoreCmd.MarkFlagRequired("ipsw")
}

func runRestore(cmd *cobra.Command, args []string) error {
	if restoreErase == restoreUpdate {
		return fmt.Errorf("exactly one of --erase or --update must be set")
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics endpoint enabled", "addr", addr)
	}

	ipsw, err := openIPSW(restoreIPSW)
	if err != nil {
		return fmt.Errorf("opening IPSW: %w", err)
	}
	defer ipsw.Close()

	manifestRaw, err := ipsw.ExtractToMemory("BuildManifest.plist")
	if err != nil {
		return fmt.Errorf("reading BuildManifest.plist: %w", err)
	}
	manifest, err := iplist.Unmarshal(manifestRaw)
	if err != nil {
		return fmt.Errorf("parsing BuildManifest.plist: %w", err)
	}

	variant := "Update"
	if restoreErase {
		variant = "Erase"
	}
	buildIdentity, err := identity.SelectFromManifest(manifest, variant)
	if err != nil {
		return fmt.Errorf("selecting build identity: %w", err)
	}

	flags := session.Flags{
		Erase:        restoreErase,
		Custom:       restoreCustom,
		Exclude:      restoreExclude,
		IgnoreErrors: restoreIgnoreErrors,
	}
	device := session.Device{UDID: restoreUDID}

	c := session.New(device, flags, cfg.TSS.URL)
	c.BuildManifest = manifest
	c.BuildIdentity = buildIdentity
	c.IPSW = ipsw

	if cfg.Metrics.Enabled {
		c.Metrics = metricsprom.NewEngineMetrics()
	}

	// Transport, TSSClient, Personalizer, Secondary and ASR are the
	// on-device-protocol collaborators spec.md §1 leaves external: this
	// binary ships the session engine, not a pairing stack, an HTTP TSS
	// client, or an ASR implementation. A production deployment links
	// those in before calling restore.Run (or builds its own entry point
	// against pkg/session and pkg/restore directly).
	if c.Transport == nil || c.TSSClient == nil || c.Personalizer == nil {
		return fmt.Errorf("restore: no Transport/TSSClient/Personalizer wired; this build only includes the restore session engine, not the device-pairing, TSS-HTTP, or personalization transports it runs over")
	}

	var macOS *session.MacOSOptions
	var mobile *session.MobileOptions
	if buildIdentity.IsMacOSVariant() {
		macOS = &session.MacOSOptions{Erase: restoreErase}
	} else {
		mobile = &session.MobileOptions{}
	}

	return restore.Run(context.Background(), c, macOS, mobile)
}
