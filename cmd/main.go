package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"proxy-discovery/pkg/config"
	"proxy-discovery/pkg/database"
	"proxy-discovery/pkg/discovery"
	"proxy-discovery/pkg/importer"
	"proxy-discovery/pkg/lookup"
	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/provider"
)

var (
	debugFlag bool
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "proxy-discovery",
	Short: "A tool for finding working public proxies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var logLevel slog.Level
		if debugFlag {
			logLevel = slog.LevelDebug
		} else {
			logLevel = slog.LevelInfo
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Acquire proxy lists, filter them and check every proxy",
	Long: `Acquire proxy lists from the configured providers, drop the proxies rejected
by the filters and check the rest through the target URL.

Providers, filters and checker settings are read from config.yaml and can be
overridden with flags.`,
	Example: "discover --wellknown free,pubproxy --protocol http --max-results 10",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			logger.Error("Error loading configuration", "error", err)
			os.Exit(1)
		}

		transport, err := resolveVia(ctx, settings.Discovery.Via, logger)
		if err != nil {
			logger.Error("Error resolving upstream transport", "error", err)
			os.Exit(1)
		}

		var db *database.DB
		if settings.Providers.Database {
			db, err = initDB()
			if err != nil {
				logger.Error("Error initializing database", "error", err)
				os.Exit(1)
			}
			defer db.Close()
		}

		locator, closer, err := newLocator(settings.Geo)
		if err != nil {
			logger.Error("Error opening geolocation database", "error", err)
			os.Exit(1)
		}
		defer closer.Close()

		d := discovery.New(logger)
		d.MaxThreads = settings.Discovery.MaxThreads
		d.Shuffle = settings.Discovery.Shuffle
		d.Observer = discovery.Multi{discovery.LogObserver{Logger: logger}, &printer{}}

		d.Providers, err = newProviders(settings.Providers, transport, db, locator, logger)
		if err != nil {
			logger.Error("Error creating proxy list providers", "error", err)
			os.Exit(1)
		}

		d.Filters, err = newFilters(settings.Filters)
		if err != nil {
			logger.Error("Error creating filters", "error", err)
			os.Exit(1)
		}

		if noCheck, _ := cmd.Flags().GetBool("no-check"); !noCheck {
			c, err := newChecker(settings.Discovery, transport, logger)
			if err != nil {
				logger.Error("Error creating proxy checker", "error", err)
				os.Exit(1)
			}
			d.Checker = c
		}

		if problems := d.Validate(); len(problems) > 0 {
			for _, p := range problems {
				logger.Error("Invalid configuration", "problem", p)
			}
			os.Exit(1)
		}

		start := time.Now()
		err = d.Update(ctx, settings.Discovery.MaxResults)
		if err != nil && ctx.Err() == nil {
			logger.Error("Error running discovery", "error", err)
			os.Exit(1)
		}

		results := d.Proxies()
		fmt.Printf("\nFound %d proxies in %s\n", len(results), time.Since(start).Round(time.Millisecond))
		for _, state := range results {
			fmt.Printf("%s\t%s\t%s\n", state.Proxy.URL(), state.Delay.Round(time.Millisecond), state.Proxy)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file] [protocol]",
	Short: "Import a proxy list file into the candidates database",
	Long: `Import a proxy list file into the candidates database.
Each line is [scheme://]host:port[#name]. Host names are resolved and every
address is stored. [protocol] applies to lines without a scheme and defaults
to http. With --replace, candidates of the named earlier batch that the new
list did not refresh are removed after the import.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := initDB()
		if err != nil {
			logger.Error("Error initializing database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			logger.Error("Error loading configuration", "error", err)
			os.Exit(1)
		}
		locator, closer, err := newLocator(settings.Geo)
		if err != nil {
			logger.Error("Error opening geolocation database", "error", err)
			os.Exit(1)
		}
		defer closer.Close()

		imp := importer.New(db, logger)
		imp.Locator = locator
		if len(args) > 1 {
			imp.DefaultProtocol = args[1]
		}
		imp.Replace, _ = cmd.Flags().GetString("replace")

		res, err := imp.ImportFile(context.Background(), args[0])
		if err != nil {
			logger.Error("Error importing proxies", "error", err)
			os.Exit(1)
		}
		logger.Info("Proxies imported successfully", "batch", res.Batch, "stored", res.Stored, "skipped", res.Skipped, "removed", res.Removed)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [batch]",
	Short: "Remove every candidate stored by one import batch",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := initDB()
		if err != nil {
			logger.Error("Error initializing database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		n, err := db.RemoveBatch(context.Background(), args[0])
		if err != nil {
			logger.Error("Error removing batch", "batch", args[0], "error", err)
			os.Exit(1)
		}
		logger.Info("Batch removed", "batch", args[0], "removed", n)
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Query the embedded country and service tables",
}

var lookupCountryCmd = &cobra.Command{
	Use:     "country [code]",
	Short:   "Print the country name for a two-letter code",
	Example: "lookup country de",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(lookup.Countries().Resolve(args[0]))
	},
}

var lookupServiceCmd = &cobra.Command{
	Use:     "service [port]",
	Short:   "Print the proxy software usually found on a port",
	Example: "lookup service 3128",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		port, err := models.ParsePort(args[0])
		if err != nil {
			logger.Error("Invalid port", "error", err)
			os.Exit(1)
		}
		fmt.Println(lookup.Services().Detect(port))
	},
}

// printer writes every check to stdout as it completes.
type printer struct {
	discovery.NopObserver
	mu sync.Mutex
}

func (p *printer) ProxyCheckComplete(state models.ProxyState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("%-30s %-18s %8s  %s\n",
		state.Proxy.URL(), state.Result, state.Delay.Round(time.Millisecond), state.Status)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	flags := discoverCmd.Flags()
	flags.String("target", "", "URL opened through every proxy")
	flags.Duration("timeout", 0, "Connect and I/O timeout per proxy, 0 for none")
	flags.Int("threads", 0, "Number of proxies checked at once")
	flags.Int("max-results", 0, "Stop after this many working proxies, 0 for no limit")
	flags.Bool("shuffle", true, "Check proxies in random order")
	flags.Bool("graceful-cancel", true, "Let in-flight checks finish on interrupt")
	flags.String("tunnel-tester", "", "Tunnel test: none, head or trace")
	flags.String("via", "", "Outline transport or ssconfig:// link used for all connections")
	flags.String("protocol", "", "Keep only proxies of this protocol")
	flags.Bool("ssl-only", false, "Keep only proxies known to support SSL")
	flags.Bool("google-only", false, "Keep only proxies known to pass Google")
	flags.Bool("allow-unknown", false, "Let --ssl-only and --google-only keep unknown proxies")
	flags.String("include-countries", "", "Keep only proxies in these countries")
	flags.String("exclude-countries", "", "Drop proxies in these countries")
	flags.String("ports", "", "Port filter, such as \"80, 8000-8100, ~8080\"")
	flags.StringSlice("wellknown", nil, "Well-known lists: "+strings.Join(provider.WellKnownNames(), ", "))
	flags.StringSlice("file", nil, "Proxy list files")
	flags.StringSlice("url", nil, "Proxy list URLs")
	flags.String("format", "", "Format of files and URLs: lines, csv or html")
	flags.StringArray("header", nil, "Extra \"Name: value\" header sent to list URLs")
	flags.Bool("database", false, "Read candidates from the database")
	flags.String("database-country", "", "Read only database candidates with this country code")
	flags.Bool("no-check", false, "Skip checking and list the filtered proxies")

	bindings := map[string]string{
		"discovery.target_url":       "target",
		"discovery.timeout":          "timeout",
		"discovery.max_threads":      "threads",
		"discovery.max_results":      "max-results",
		"discovery.shuffle":          "shuffle",
		"discovery.graceful_cancel":  "graceful-cancel",
		"discovery.tunnel_tester":    "tunnel-tester",
		"discovery.via":              "via",
		"filters.protocol":           "protocol",
		"filters.ssl_only":           "ssl-only",
		"filters.google_only":        "google-only",
		"filters.allow_unknown":      "allow-unknown",
		"filters.include_countries":  "include-countries",
		"filters.exclude_countries":  "exclude-countries",
		"filters.ports":              "ports",
		"providers.wellknown":        "wellknown",
		"providers.files":            "file",
		"providers.urls":             "url",
		"providers.format":           "format",
		"providers.headers":          "header",
		"providers.database":         "database",
		"providers.database_country": "database-country",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	importCmd.Flags().String("replace", "", "Batch id of an earlier import to replace")

	lookupCmd.AddCommand(lookupCountryCmd)
	lookupCmd.AddCommand(lookupServiceCmd)

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(lookupCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.proxy-discovery")
	viper.AddConfigPath("/etc/proxy-discovery/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func initDB() (*database.DB, error) {
	db, err := database.NewDB()
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	err = db.InitSchema(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
