package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/virel-project/virel-social/adb"
	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/block"
	"github.com/virel-project/virel-social/blockchain"
	"github.com/virel-project/virel-social/util"

	"github.com/ergochat/readline"
)

type Cmd struct {
	Names  []string
	Action func(args []string)
	Args   string
}

var commands = Commands{}

type Commands []Cmd

// Do completes the command name: readline passes the line and the cursor position, and expects the
// suffixes of every candidate with the length they share with the line.
func (c Commands) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 {
		return [][]rune{}, 0
	}

	lineStr := string(line)
	sols := [][]rune{}
	for _, v := range c {
		if strings.HasPrefix(v.Names[0], lineStr) {
			sols = append(sols, []rune(v.Names[0][len(lineStr):]))
		}
	}

	return sols, pos
}

func (c Commands) find(name string) *Cmd {
	for i, v := range c {
		for _, n := range v.Names {
			if n == name {
				return &c[i]
			}
		}
	}
	return nil
}

func prompts(bc *blockchain.Blockchain, stop context.CancelFunc) {
	commands = append(commands, []Cmd{{
		Names: []string{"status", "info"},
		Args:  "",
		Action: func(args []string) {
			var stats *blockchain.Stats
			var mem *blockchain.Mempool
			err := bc.DB.View(func(txn adb.Txn) (err error) {
				stats, err = bc.GetStats(txn)
				if err != nil {
					return err
				}
				mem, err = bc.GetMempool(txn)
				return err
			})
			if err != nil {
				Log.Err(err)
				return
			}

			Log.Infof("Height: %d; top hash: %x", stats.TopHeight, stats.TopHash)
			Log.Infof("Edges: %d; handles: %d", stats.Edges, stats.Handles)
			Log.Infof("Mempool: %d entries", len(mem.Entries))
		},
	}, {
		Names: []string{"block", "print_block"},
		Args:  "<height>",
		Action: func(args []string) {
			if len(args) < 1 {
				Log.Err("Usage: block <height>")
				return
			}
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				Log.Err("invalid height:", err)
				return
			}

			var bl *block.Block
			err = bc.DB.View(func(txn adb.Txn) (err error) {
				bl, err = bc.GetBlockByHeight(txn, height)
				return
			})
			if err != nil {
				Log.Err(err)
				return
			}
			Log.Info(bl.String())
		},
	}, {
		Names: []string{"edges", "connections"},
		Args:  "<address>",
		Action: func(args []string) {
			if len(args) < 1 {
				Log.Err("Usage: edges <address>")
				return
			}
			addr, err := address.FromString(args[0])
			if err != nil {
				Log.Err("invalid address:", err)
				return
			}

			for _, dir := range []blockchain.Direction{blockchain.DirectionTo, blockchain.DirectionFrom} {
				var list []blockchain.Connection
				err = bc.DB.View(func(txn adb.Txn) error {
					for page := uint64(0); ; page++ {
						l, maxPage, err := bc.GetConnections(txn, addr, dir, page)
						if err != nil {
							return err
						}
						list = append(list, l...)
						if page >= maxPage {
							return nil
						}
					}
				})
				if err != nil {
					Log.Err(err)
					return
				}

				if dir == blockchain.DirectionTo {
					Log.Infof("Followers (%d)", len(list))
					for _, v := range list {
						Log.Infof(" - %s", v.From)
					}
				} else {
					Log.Infof("Following (%d)", len(list))
					for _, v := range list {
						Log.Infof(" - %s", v.To)
					}
				}
			}
		},
	}, {
		Names: []string{"mempool", "print_pool"},
		Args:  "",
		Action: func(args []string) {
			txs, err := bc.MempoolTransactions()
			if err != nil {
				Log.Err(err)
				return
			}
			Log.Infof("Mempool: %d transactions", len(txs))
			for i, tx := range txs {
				Log.Infof("%d. %s nonce %d by %s", i, util.ShortString(tx.Hash().String()), tx.Nonce,
					tx.SignerAddress().Short())
			}
		},
	}, {
		Names: []string{"exit", "quit"},
		Args:  "",
		Action: func(args []string) {
			stop()
		},
	}, {
		Names: []string{"help"},
		Args:  "",
		Action: func(args []string) {
			Log.Info("List of available commands:")
			for _, v := range commands {
				Log.Infof("%s %s", util.PadR(v.Names[0], 14), v.Args)
			}
		},
	}}...)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32m>\033[0m ",
		AutoComplete:    commands,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
	})
	if err != nil {
		Log.Err(err)
		return
	}
	defer l.Close()

	Log.SetStdout(l.Stdout())
	Log.SetStderr(l.Stderr())

	for {
		line, err := l.ReadLine()
		if err != nil {
			stop()
			return
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		cmd := commands.find(args[0])
		if cmd == nil {
			Log.Err("command", args[0], "not found")
			continue
		}
		cmd.Action(args[1:])
		if cmd.Names[0] == "exit" {
			return
		}
	}
}
