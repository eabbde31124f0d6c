package main

import (
	"strings"

	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/wallet"

	"github.com/ergochat/readline"
)

// initialPrompt opens, creates or restores a wallet. It returns nil when stdin is closed.
func initialPrompt(daemon wallet.Daemon) *wallet.Wallet {
	l, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
	})
	if err != nil {
		Log.Err(err)
		return nil
	}
	defer l.Close()

	if config.NETWORK_NAME != "mainnet" {
		Log.Warn("This is a", strings.ToUpper(config.NETWORK_NAME), "wallet, only for testing.")
	}

	for {
		Log.Info("Available commands:")
		Log.Info("open    Open wallet file")
		Log.Info("create  Creates a new wallet")
		Log.Info("restore Restore a wallet from seedphrase")

		l.SetPrompt("\033[32m>\033[0m ")

		line, err := l.ReadLine()
		if err != nil {
			return nil
		}

		cmds := strings.Fields(strings.ToLower(line))
		if len(cmds) == 0 {
			continue
		}

		cmd := cmds[0]
		if cmd != "open" && cmd != "create" && cmd != "restore" {
			Log.Err("unknown command")
			continue
		}
		if len(cmds) == 1 {
			l.SetPrompt("Wallet name: ")
			filename, err := l.ReadLine()
			if err != nil {
				return nil
			}
			cmds = append(cmds, strings.TrimSpace(filename))
		}
		name := cmds[1]
		if name == "" || strings.ContainsAny(name, "/. \\$") {
			Log.Err("invalid wallet name")
			continue
		}

		password, err := readPassword("Wallet password:")
		if err != nil {
			Log.Err(err)
			continue
		}

		if cmd == "open" {
			Log.Info("opening wallet")

			w, err := wallet.OpenWalletFile(daemon, name+".keys", password)
			if err != nil {
				Log.Err(err)
				continue
			}
			return w
		}

		confirmPass, err := readPassword("Repeat password:")
		if err != nil {
			Log.Err(err)
			continue
		}
		if string(confirmPass) != string(password) {
			Log.Err("password doesn't match")
			continue
		}

		if cmd == "create" {
			w, err := wallet.CreateWalletFile(daemon, name+".keys", password)
			if err != nil {
				Log.Err("Could not create wallet:", err)
				continue
			}
			Log.Info("Your mnemonic seed phrase:")
			Log.Info(w.GetMnemonic())
			Log.Info("Write down this mnemonic seed phrase on a secure offline medium (e.g. paper) to recover your wallet.")
			return w
		}

		Log.Info("restoring wallet")

		l.SetPrompt("Mnemonic seed: ")
		mnemonic, err := l.ReadLine()
		if err != nil {
			return nil
		}

		w, err := wallet.CreateWalletFileFromMnemonic(daemon, name+".keys", strings.TrimSpace(mnemonic), password)
		if err != nil {
			Log.Err(err)
			continue
		}
		return w
	}
}
