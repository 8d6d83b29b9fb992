// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"iqscope/internal/config"
	"iqscope/pkg/build"
)

// ParseArgs builds the runtime configuration from three layers: YAML file,
// environment overrides (both applied by config.LoadConfig), and CLI flags
// on top.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	// --config must be known before cobra runs so the remaining flag
	// defaults come from the loaded file.
	options, err := config.LoadConfig(configPathArg(os.Args[1:]))
	if err != nil {
		return nil, err
	}

	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time IQ spectrum engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.RunEngine = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available IQ capture devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.RunEngine = false
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")

	// Engine configuration
	rootCmd.PersistentFlags().Float64VarP(&options.Engine.SampleRate, "sample-rate", "s", options.Engine.SampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&options.Engine.FFTSize, "fft-size", "n", options.Engine.FFTSize,
		"Transform size (must be a power of 2)")
	rootCmd.PersistentFlags().StringVarP(&options.Engine.Window, "window", "w", options.Engine.Window,
		"Analysis window function (hann, hamming, blackman, ...)")
	rootCmd.PersistentFlags().Float64Var(&options.Engine.Squelch, "squelch", options.Engine.Squelch,
		"Amplitude gate threshold 0.0-1.0 (0 disables)")

	// Source configuration
	rootCmd.PersistentFlags().StringVar(&options.Source.Kind, "source", options.Source.Kind,
		"Sample source: signal, file, wav, or soundcard")
	rootCmd.PersistentFlags().Float64Var(&options.Source.ToneHz, "tone", options.Source.ToneHz,
		"Signal source tone frequency (Hz)")
	rootCmd.PersistentFlags().StringVarP(&options.Source.Path, "input", "i", options.Source.Path,
		"Input file path for file/wav sources")
	rootCmd.PersistentFlags().BoolVar(&options.Source.Loop, "loop", options.Source.Loop,
		"Restart the input file on EOF")
	rootCmd.PersistentFlags().IntVarP(&options.Source.Device, "device", "d", options.Source.Device,
		"Capture device ID. Use 'list' to see available devices.")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Recording.Enabled, "record", "r", options.Recording.Enabled,
		"Record the raw IQ stream to a stereo WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.Recording.Output, "output", "o", options.Recording.Output,
		"Recording file name. Default is capture-MM-DD-YYYY-HHMMSS.wav")

	// Transport configuration
	rootCmd.PersistentFlags().BoolVar(&options.Transport.WebSocketEnabled, "ws", options.Transport.WebSocketEnabled,
		"Serve spectrum frames over WebSocket")
	rootCmd.PersistentFlags().StringVar(&options.Transport.WebSocketAddr, "ws-addr", options.Transport.WebSocketAddr,
		"WebSocket listen address")
	rootCmd.PersistentFlags().BoolVar(&options.Transport.UDPEnabled, "udp", options.Transport.UDPEnabled,
		"Send spectrum frames over UDP")
	rootCmd.PersistentFlags().StringVar(&options.Transport.UDPTargetAddress, "udp-target", options.Transport.UDPTargetAddress,
		"UDP target address (host:port)")

	// Debug configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", options.Verbose,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if options.Recording.Enabled && options.Recording.Output == "" {
		options.Recording.Output = "capture-" +
			time.Now().UTC().Format("01-02-2006-150405") + ".wav"
	}

	// Flags may have introduced invalid values on top of a valid file.
	if err := options.Validate(); err != nil {
		return nil, err
	}

	return options, nil
}

// configPathArg extracts the --config value from raw arguments before cobra
// parses them.
func configPathArg(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
