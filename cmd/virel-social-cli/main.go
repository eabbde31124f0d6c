package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/follow"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/notify"
	"github.com/virel-project/virel-social/qcache"
	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/rpc/daemonrpc"
	"github.com/virel-project/virel-social/wallet"

	flags "github.com/jessevdk/go-flags"
	"golang.org/x/term"
)

var Log = logger.New()

func init() {
	follow.Log = Log.Named("follow")
	ledger.Log = Log.Named("ledger")
	qcache.Log = Log.Named("cache")
	wallet.Log = Log.Named("wallet")
	rpc.Log = Log.Named("rpc")
}

type options struct {
	DaemonAddress  string `long:"daemon-address" description:"RPC address of the ledger node"`
	DaemonAuth     string `long:"daemon-auth" description:"colon-separated username and password of the node RPC"`
	OpenWallet     string `long:"open-wallet" description:"open a wallet file"`
	WalletPassword string `long:"wallet-password" description:"wallet password when using --open-wallet"`
	LogLevel       uint8  `long:"log-level" default:"1" description:"sets the log level (range: 0-4)"`
	LogFile        string `long:"log-file" description:"also write the log to this file, rotated every 10 MB"`
	Version        bool   `long:"version" description:"prints version and exits"`
	ConfigFile     string `long:"config" description:"ini file with the same options as the command line"`
}

func loadOptions() (*options, error) {
	opts := &options{
		DaemonAddress: fmt.Sprintf("http://127.0.0.1:%d", config.RPC_BIND_PORT),
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
	return opts, nil
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(prompt string) ([]byte, error) {
	Log.Prompt(prompt)
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		var line string
		_, err := fmt.Scanln(&line)
		return []byte(line), err
	}
	p, err := term.ReadPassword(fd)
	fmt.Println()
	return p, err
}

// app holds what the prompt commands work with.
type app struct {
	ctx     context.Context
	rpc     *daemonrpc.RpcClient
	wallet  *wallet.Wallet
	ledger  *ledger.Client
	reader  *follow.Reader
	writer  *follow.Writer
	history *notify.Recorder
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
		fmt.Printf("%s-cli v%s\n", config.NAME, config.VersionString())
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

	Log.Info("Starting", config.NETWORK_NAME, "social CLI")

	cl := daemonrpc.NewRpcClient(opts.DaemonAddress)
	cl.Authentication = opts.DaemonAuth

	var w *wallet.Wallet
	if opts.OpenWallet != "" {
		if strings.ContainsAny(opts.OpenWallet, "/. \\$") {
			Log.Fatal("invalid wallet name")
		}
		w, err = wallet.OpenWalletFile(cl, opts.OpenWallet+".keys", []byte(opts.WalletPassword))
		if err != nil {
			Log.Fatal(err)
		}
	} else {
		w = initialPrompt(cl)
		if w == nil {
			return
		}
	}

	Log.Info("Wallet", w.GetAddress(), "has been loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = w.Refresh(ctx)
	if err != nil {
		Log.Warn("refresh failed:", err)
	} else {
		Log.Infof("Following: %d; followers: %d", w.GetFollowing(), w.GetFollowers())
	}

	cache := qcache.New()
	source := follow.NewRPCSource(cl)
	lc := ledger.New(cl, ledger.Options{})
	history := &notify.Recorder{
		Next: notify.LogNotifier{Log: Log.Named("notify")},
	}

	prompts(&app{
		ctx:     ctx,
		rpc:     cl,
		wallet:  w,
		ledger:  lc,
		reader:  follow.NewReader(cache, source, source),
		writer:  follow.NewWriter(cache, lc, w, history),
		history: history,
	})
}
