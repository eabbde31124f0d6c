package main

import (
	"strings"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/follow"
	"github.com/virel-project/virel-social/ledger"
	"github.com/virel-project/virel-social/notify"
	"github.com/virel-project/virel-social/transaction"
	"github.com/virel-project/virel-social/util"

	"github.com/davecgh/go-spew/spew"
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

// argAddress parses the first argument, or returns def when there is none.
func argAddress(args []string, def address.Address) (address.Address, bool) {
	if len(args) == 0 {
		if def.IsValid() {
			return def, true
		}
		Log.Err("missing address")
		return address.INVALID_ADDRESS, false
	}
	addr, err := address.FromString(args[0])
	if err != nil {
		Log.Err("invalid address:", err)
		return address.INVALID_ADDRESS, false
	}
	return addr, true
}

func (a *app) printProfile(target address.Address) {
	to := a.reader.ConnectionsTo(a.ctx, target)
	from := a.reader.ConnectionsFrom(a.ctx, target)
	v := follow.Project(to, from, a.wallet.Address(), target)
	if v.Err != nil {
		Log.Warn("Unable to load connections:", v.Err)
		return
	}

	label := follow.NewLabel(target, a.reader.Handle(a.ctx, target), false)
	Log.Infof("%s (%s)", label.Text, target)
	Log.Infof("Avatar: %s", label.AvatarURL)
	Log.Infof("Followers: %d; following: %d", v.FollowerCount, v.FollowingCount)

	if len(v.FollowedBy) > 0 {
		names := make([]string, len(v.FollowedBy))
		for i, l := range v.FollowedBy {
			names[i] = l.Text
		}
		s := strings.Join(names, ", ")
		if v.Others > 0 {
			s += " +" + util.FormatInt(v.Others)
		}
		Log.Info("Followed by", s)
	}

	switch {
	case v.IsSelf:
		Log.Info("This is your profile")
	case v.ShowUnfollow():
		Log.Info("You follow this address. Use 'unfollow' to stop following it.")
	case v.ShowFollow():
		Log.Info("Use 'follow' to follow this address.")
	}
}

func (a *app) printEdges(target address.Address, dir follow.Direction) {
	res := a.reader.Load(a.ctx, target, dir)
	if res.State() == follow.Error {
		Log.Warn("Unable to load connections:", res.Err())
		return
	}

	edges := res.Edges()
	if dir == follow.To {
		Log.Infof("Followers of %s (%d)", target.Short(), len(edges))
	} else {
		Log.Infof("Followed by %s (%d)", target.Short(), len(edges))
	}
	for _, e := range edges {
		l := follow.NewLabel(e.From, e.FromHandle, false)
		if dir == follow.From {
			l = follow.NewLabel(e.To, e.ToHandle, false)
		}
		Log.Infof(" - %s %s", util.PadR(l.Text, 24), l.Address)
	}
}

func (a *app) setHandle(handle, avatar string) {
	tx, err := a.wallet.Sign(a.ctx, &transaction.SetHandle{Handle: handle, AvatarURL: avatar})
	if err != nil {
		Log.Err("invalid handle:", err)
		return
	}
	txid, err := a.ledger.Submit(a.ctx, tx)
	if err != nil {
		a.history.Notify(notify.Notification{Kind: notify.Failure, Message: "Unable to set handle, try again later."})
		Log.Debug(err)
		return
	}
	a.history.Notify(notify.Notification{
		Kind:    notify.Info,
		Message: "Confirming transaction: " + util.ShortString(txid.String()),
	})

	err = a.ledger.Confirm(a.ctx, txid, ledger.Finalized)
	if err != nil {
		a.history.Notify(notify.Notification{Kind: notify.Failure, Message: "Unable to set handle, try again later."})
		Log.Debug(err)
		return
	}
	a.reader.Refresh()
	a.history.Notify(notify.Notification{Kind: notify.Success, Message: "Handle set: " + handle})
}

func prompts(a *app) {
	commands = append(commands, []Cmd{{
		Names: []string{"address", "addr", "status"},
		Args:  "",
		Action: func(args []string) {
			err := a.wallet.Refresh(a.ctx)
			if err != nil {
				Log.Warn("refresh failed:", err)
			}
			Log.Infof("Wallet %s", a.wallet.GetAddress())
			Log.Infof("Following: %d; followers: %d", a.wallet.GetFollowing(), a.wallet.GetFollowers())
			Log.Infof("Last nonce: %d; height: %d", a.wallet.GetLastNonce(), a.wallet.GetHeight())
		},
	}, {
		Names: []string{"profile"},
		Args:  "[address]",
		Action: func(args []string) {
			if target, ok := argAddress(args, a.wallet.Address()); ok {
				a.printProfile(target)
			}
		},
	}, {
		Names: []string{"followers"},
		Args:  "[address]",
		Action: func(args []string) {
			if target, ok := argAddress(args, a.wallet.Address()); ok {
				a.printEdges(target, follow.To)
			}
		},
	}, {
		Names: []string{"following"},
		Args:  "[address]",
		Action: func(args []string) {
			if target, ok := argAddress(args, a.wallet.Address()); ok {
				a.printEdges(target, follow.From)
			}
		},
	}, {
		Names: []string{"follow"},
		Args:  "<address>",
		Action: func(args []string) {
			if target, ok := argAddress(args, address.INVALID_ADDRESS); ok {
				res := a.writer.Follow(a.ctx, target)
				if res.OK() {
					a.printProfile(target)
				}
			}
		},
	}, {
		Names: []string{"unfollow"},
		Args:  "<address>",
		Action: func(args []string) {
			if target, ok := argAddress(args, address.INVALID_ADDRESS); ok {
				res := a.writer.Unfollow(a.ctx, target)
				if res.OK() {
					a.printProfile(target)
				}
			}
		},
	}, {
		Names: []string{"set_handle", "sethandle"},
		Args:  "<handle> [avatar url]",
		Action: func(args []string) {
			if len(args) < 1 {
				Log.Err("Usage: set_handle <handle> [avatar url]")
				return
			}
			avatar := ""
			if len(args) > 1 {
				avatar = args[1]
			}
			a.setHandle(args[0], avatar)
		},
	}, {
		Names: []string{"refresh"},
		Args:  "",
		Action: func(args []string) {
			a.reader.Refresh()
			Log.Info("Cache cleared")
		},
	}, {
		Names: []string{"notifications", "history"},
		Args:  "",
		Action: func(args []string) {
			all := a.history.All()
			Log.Infof("Notifications (%d)", len(all))
			for _, n := range all {
				Log.Infof(" %s %s", n.Time.Format("15:04:05"), n)
			}
		},
	}, {
		Names: []string{"dump"},
		Args:  "<address>",
		Action: func(args []string) {
			target, ok := argAddress(args, a.wallet.Address())
			if !ok {
				return
			}
			Log.Info("Followers:\n" + spew.Sdump(a.reader.ConnectionsTo(a.ctx, target)))
			Log.Info("Following:\n" + spew.Sdump(a.reader.ConnectionsFrom(a.ctx, target)))
			Log.Info("Handle:\n" + spew.Sdump(a.reader.Handle(a.ctx, target)))
		},
	}, {
		Names: []string{"seedphrase", "seed", "mnemonic"},
		Args:  "",
		Action: func(args []string) {
			Log.Info("Your mnemonic seed phrase:")
			Log.Info(a.wallet.GetMnemonic())
		},
	}, {
		Names: []string{"exit", "quit"},
		Args:  "",
		Action: func(args []string) {},
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
		if cmd.Names[0] == "exit" || a.ctx.Err() != nil {
			return
		}
	}
}
