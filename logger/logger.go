package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Log levels. A message is written when the logger level is >= the message level.
const (
	LevelQuiet  uint8 = 0
	LevelInfo   uint8 = 1
	LevelDebug  uint8 = 2
	LevelDev    uint8 = 3
	LevelNetDev uint8 = 4
)

var DiscardLog = &Log{
	out: &output{
		logLevel: 0,
		stdout:   io.Discard,
		stderr:   io.Discard,
	},
}

func New() *Log {
	return &Log{
		out: &output{
			stdout:   os.Stdout,
			stderr:   os.Stderr,
			logLevel: LevelInfo,
		},
	}
}

// Log is shared by every logger created with Named: they all write to the same outputs and use the
// same level.
type Log struct {
	name string
	out  *output
}

type output struct {
	logLevel uint8
	stdout   io.Writer
	stderr   io.Writer
	tee      []io.Writer
	sync.RWMutex
}

// Named returns a child logger which prefixes every message with name.
func (l *Log) Named(name string) *Log {
	if l.name != "" {
		name = l.name + "/" + name
	}
	return &Log{
		name: name,
		out:  l.out,
	}
}

func (l *Log) SetLogLevel(lvl uint8) {
	l.out.Lock()
	defer l.out.Unlock()

	l.out.logLevel = lvl
}
func (l *Log) GetLogLevel() uint8 {
	l.out.RLock()
	defer l.out.RUnlock()

	return l.out.logLevel
}
func (l *Log) SetStdout(stdout io.Writer) {
	l.out.Lock()
	defer l.out.Unlock()

	l.out.stdout = stdout
}
func (l *Log) SetStderr(stderr io.Writer) {
	l.out.Lock()
	defer l.out.Unlock()

	l.out.stderr = stderr
}

// Tee duplicates every message into w, e.g. a log file rotator. It is kept when stdout or stderr
// are replaced.
func (l *Log) Tee(w io.Writer) {
	l.out.Lock()
	defer l.out.Unlock()

	l.out.tee = append(l.out.tee, w)
}

var Reset = "\033[0m"
var Red = "\033[31m"
var Green = "\033[32m"
var Yellow = "\033[33m"
var Blue = "\033[34m"
var Purple = "\033[35m"
var Cyan = "\033[36m"
var Gray = "\033[37m"
var White = "\033[97m"
var Bold = "\033[1m"

func getLogPrefix() string {
	_, file, line, _ := runtime.Caller(3)
	fileSpl := strings.Split(file, "/")
	debugInfos := strings.Split(fileSpl[len(fileSpl)-1], ".")[0] + ":" + strconv.FormatInt(int64(line), 10)
	for len(debugInfos) < 18 {
		debugInfos = debugInfos + " "
	}

	return getTime() + debugInfos
}
func getTime() string {
	t := time.Now()
	s := fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1000/1000)
	return s + " "
}

// write is the single sink of every level method; it must be called directly by them so that
// getLogPrefix reports the caller of the level method.
func (l *Log) write(lvl uint8, toStderr bool, color, tag, msg string) {
	l.out.Lock()
	defer l.out.Unlock()
	if l.out.logLevel < lvl {
		return
	}
	w := l.out.stdout
	if toStderr {
		w = l.out.stderr
	}
	if l.name != "" {
		msg = "[" + l.name + "] " + msg
	}
	line := []byte(getLogPrefix() + color + tag + " " + msg + Reset)
	w.Write(line)
	for _, t := range l.out.tee {
		t.Write(line)
	}
}

func (l *Log) Info(a ...any) {
	l.write(LevelInfo, false, "", "I", fmt.Sprintln(a...))
}
func (l *Log) Infof(format string, a ...any) {
	l.write(LevelInfo, false, "", "I", fmt.Sprintf(format+"\n", a...))
}

// Prompt prints a question for the user, without a trailing newline.
func (l *Log) Prompt(a ...any) {
	l.write(LevelInfo, false, Bold, "?", fmt.Sprint(a...)+" ")
}

func (l *Log) Warn(a ...any) {
	l.write(LevelInfo, false, Yellow, "W", fmt.Sprintln(a...))
}
func (l *Log) Warnf(format string, a ...any) {
	l.write(LevelInfo, false, Yellow, "W", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Err(a ...any) {
	l.write(LevelInfo, false, Red, "E", fmt.Sprintln(a...))
}
func (l *Log) Errf(format string, a ...any) {
	l.write(LevelInfo, true, Red, "E", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Debug(a ...any) {
	l.write(LevelDebug, false, Cyan, "D", fmt.Sprintln(a...))
}
func (l *Log) Debugf(format string, a ...any) {
	l.write(LevelDebug, false, Cyan, "D", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Dev(a ...any) {
	l.write(LevelDev, false, Cyan, "d", fmt.Sprintln(a...))
}
func (l *Log) Devf(format string, a ...any) {
	l.write(LevelDev, false, Cyan, "d", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Net(a ...any) {
	l.write(LevelDev, false, Green, "N", fmt.Sprintln(a...))
}
func (l *Log) Netf(format string, a ...any) {
	l.write(LevelDev, false, Green, "N", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) NetDev(a ...any) {
	l.write(LevelNetDev, false, Green, "n", fmt.Sprintln(a...))
}
func (l *Log) NetDevf(format string, a ...any) {
	l.write(LevelNetDev, false, Green, "n", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Fatal(a ...any) {
	l.write(LevelInfo, true, Red, "F", fmt.Sprintln(a...))
	panic(fmt.Sprintln(a...))
}
