package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/adb/boltdb"
	"github.com/virel-project/virel-social/adb/lmdb"
	"github.com/virel-project/virel-social/blockchain"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/rpc/noderpc"
	"github.com/virel-project/virel-social/rpc/rpcserver"
	"github.com/virel-project/virel-social/util/updatechecker"

	flags "github.com/jessevdk/go-flags"
)

var Log = logger.New()

func init() {
	blockchain.Log = Log.Named("ledger")
	noderpc.Log = Log.Named("rpc")
	rpc.Log = Log.Named("rpc")
}

type options struct {
	DataDir        string `long:"data-dir" description:"directory of the ledger database"`
	DB             string `long:"db" choice:"bolt" choice:"lmdb" default:"bolt" description:"database backend"`
	RpcBindIP      string `long:"rpc-bind-ip" default:"127.0.0.1" description:"use 0.0.0.0 to expose the RPC server"`
	RpcBindPort    uint16 `long:"rpc-bind-port" description:"starts RPC server on this port"`
	RpcAuth        string `long:"rpc-auth" description:"colon-separated username and password, like user:pass"`
	BlockTime      uint   `long:"block-time" description:"seconds between two blocks"`
	LogLevel       uint8  `long:"log-level" default:"1" description:"sets the log level (range: 0-4)"`
	LogFile        string `long:"log-file" description:"also write the log to this file, rotated every 10 MB"`
	NonInteractive bool   `long:"non-interactive" description:"do not read commands from stdin. Useful for running as a service."`
	NoUpdateCheck  bool   `long:"no-update-check" description:"disables update checking"`
	Version        bool   `long:"version" description:"prints version and exits"`
	ConfigFile     string `long:"config" description:"ini file with the same options as the command line"`
}

func loadOptions() (*options, error) {
	opts := &options{
		RpcBindPort: config.RPC_BIND_PORT,
		BlockTime:   config.TARGET_BLOCK_TIME,
	}

	parser := flags.NewParser(opts, flags.Default)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	// command line options override the config file
	if opts.ConfigFile != "" {
		err = flags.NewIniParser(parser).ParseFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		_, err = parser.Parse()
		if err != nil {
			return nil, err
		}
	}

	if opts.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		opts.DataDir = filepath.Join(home, config.NAME+"-"+config.NETWORK_NAME)
	}
	if opts.BlockTime == 0 {
		return nil, fmt.Errorf("block-time must be at least 1 second")
	}
	return opts, nil
}

func openDB(opts *options) (adb.DB, error) {
	switch opts.DB {
	case "lmdb":
		return lmdb.New(filepath.Join(opts.DataDir, "lmdb"), 0o755, Log.Named("lmdb"))
	default:
		return boltdb.New(filepath.Join(opts.DataDir, "ledger.db"), 0o600)
	}
}

func main() {
	opts, err := loadOptions()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("%s-node v%s\n", config.NAME, config.VersionString())
		os.Exit(0)
	}

	Log.SetLogLevel(opts.LogLevel)

	if opts.LogFile != "" {
		r, err := Log.RotateTo(opts.LogFile)
		if err != nil {
			Log.Fatal(err)
		}
		defer r.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.NoUpdateCheck {
		go updatechecker.RunUpdateChecker(ctx, Log, config.UPDATE_CHECK_URL)
	}

	Log.Info("Starting", config.NETWORK_NAME, "social ledger node")
	Log.Info("Network ID:", config.NETWORK_ID)
	Log.Infof("Version: %s", config.VersionString())
	if config.NETWORK_NAME != "mainnet" {
		Log.Warn("This is a", strings.ToUpper(config.NETWORK_NAME), "node, only for testing.")
	}

	err = os.MkdirAll(opts.DataDir, 0o774)
	if err != nil {
		Log.Fatal("failed to create data dir:", err)
	}

	db, err := openDB(opts)
	if err != nil {
		Log.Fatal(err)
	}

	bc, err := blockchain.New(db)
	if err != nil {
		Log.Fatal(err)
	}

	rs := rpcserver.New(rpcserver.Config{
		Restricted:     opts.RpcBindIP != "127.0.0.1",
		Authentication: opts.RpcAuth,
		RateLimit:      100_000,
	})
	noderpc.Register(rs, bc)

	_, err = rs.Start(fmt.Sprintf("%s:%d", opts.RpcBindIP, opts.RpcBindPort))
	if err != nil {
		Log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	produced := make(chan struct{})
	go func() {
		bc.Run(ctx, time.Duration(opts.BlockTime)*time.Second)
		close(produced)
	}()

	if !opts.NonInteractive {
		go prompts(bc, cancel)
	}
	<-ctx.Done()

	Log.Info("Shutting down")
	<-produced

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	err = rs.Shutdown(shutdownCtx)
	if err != nil {
		Log.Warn("rpc server shutdown:", err)
	}

	err = bc.Close()
	if err != nil {
		Log.Err("closing ledger:", err)
	}
}
