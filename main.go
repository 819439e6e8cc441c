package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"uttr/audio"
	"uttr/beep"
	"uttr/clipboard"
	"uttr/config"
	"uttr/doctor"
	"uttr/history"
	"uttr/hotkey"
	"uttr/log"
	"uttr/overlay"
	"uttr/signals"
	"uttr/transcriber"
	"uttr/tray"
)

var version = "dev"

// UI kinds for -ui.
const (
	uiTerminal = "terminal"
	uiGUI      = "gui"
	uiNone     = "none"
)

// frontend is what the GUI build hands to run: a window that already owns
// the main thread and a tray attached to the toolkit's menu.
type frontend struct {
	window overlay.Window
	screen overlay.Screen
	tray   *tray.Tray
	ref    *appRef
	quit   func()
}

// appRef lets menu callbacks created before wiring reach the app.
type appRef struct {
	mu sync.Mutex
	a  *app
	q  func()
}

func (r *appRef) set(a *app, quit func()) {
	r.mu.Lock()
	r.a, r.q = a, quit
	r.mu.Unlock()
}

func (r *appRef) get() (*app, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.a, r.q
}

func (r *appRef) actions() tray.Actions {
	with := func(fn func(tray.Actions) func()) func() {
		return func() {
			a, quit := r.get()
			if a == nil {
				return
			}
			if f := fn(a.trayActions(quit)); f != nil {
				f()
			}
		}
	}
	return tray.Actions{
		Toggle:   with(func(t tray.Actions) func() { return t.Toggle }),
		Cancel:   with(func(t tray.Actions) func() { return t.Cancel }),
		CopyLast: with(func(t tray.Actions) func() { return t.CopyLast }),
		Quit:     with(func(t tray.Actions) func() { return t.Quit }),
	}
}

// wantsGUI reports whether args select the fyne UI. It runs before flag
// parsing because the GUI must take the main thread first.
func wantsGUI(args []string) bool {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "ui" || !strings.HasPrefix(arg, "-") {
			continue
		}
		if !hasValue && i+1 < len(args) {
			value = args[i+1]
		}
		return value == uiGUI
	}
	return false
}

// defaultUI picks the terminal UI when stdout is a terminal.
func defaultUI() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return uiTerminal
	}
	return uiNone
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func run(fe *frontend) {
	configFlag := flag.String("config", "", "config file (default: $XDG_CONFIG_HOME/uttr/config.yml, then ./config.yml)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	uiFlag := flag.String("ui", defaultUI(), "user interface: terminal, gui or none")
	trayFlag := flag.Bool("tray", true, "show the system tray icon")
	testFlag := flag.String("test", "", "Test mode (headless, stdin-driven) with a WAV file as the microphone")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	selectDeviceFlag := flag.Bool("select-device", false, "Pick a microphone and print its name for the device setting")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}
	if *versionFlag {
		fmt.Printf("uttr %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag || *selectDeviceFlag {
		actx, err := audio.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		defer actx.Close()
		if *doctorFlag {
			os.Exit(doctor.Main(*configFlag, actx))
		}
		dev, err := audio.SelectDevice(actx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("device: %q\n", dev.Name)
		os.Exit(0)
	}

	store, err := config.Load(config.ResolveFile(*configFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings := store.Snapshot()
	log.SetLevel(settings.LogLevel)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if *testFlag != "" {
		code := runTestMode(store, *testFlag, os.Stdin, os.Stdout)
		log.Close()
		os.Exit(code)
	}

	ui := *uiFlag
	if fe != nil {
		ui = uiGUI
	} else if ui == uiGUI {
		fmt.Fprintln(os.Stderr, "Error: uttr was built without GUI support (rebuild with -tags gui)")
		os.Exit(1)
	}
	if ui != uiTerminal && ui != uiGUI && ui != uiNone {
		fmt.Fprintf(os.Stderr, "Error: unknown -ui %q (use terminal, gui or none)\n", ui)
		os.Exit(1)
	}
	log.SessionStart(settings.Model, settings.PushToTalk, ui)

	if settings.APIKey == "" {
		log.Warn("no API key configured; transcription will fail until GROQ_API_KEY or api_key is set")
	}
	if msg, err := hotkey.Diagnose(); err != nil {
		log.Warnf("global shortcuts: %v", err)
	} else {
		log.Debugf("global shortcuts: %s", msg)
	}
	if settings.Paste {
		if err := clipboard.Init(); err != nil {
			log.Warnf("paste init: %v", err)
		}
	}
	if settings.AudioFeedback {
		beep.Init()
	}

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	device, err := audio.FindDevice(actx, settings.Device)
	if err != nil {
		log.Warnf("%v; using the system default", err)
	}
	if device != nil && audio.IsBluetooth(device.Name) {
		log.Warnf("%s looks like a Bluetooth headset; capture may switch it to low quality", device.Name)
	}

	var hist *history.Store
	if settings.History {
		if path, err := history.DefaultPath(); err != nil {
			log.Warnf("history: %v", err)
		} else if hist, err = history.Open(path, settings.HistoryLimit); err != nil {
			log.Warnf("history disabled: %v", err)
			hist = nil
		}
	}

	d := deps{
		store:       store,
		recorder:    audio.NewRecordingManager(actx, device),
		transcriber: transcriber.NewManager(store, audio.SampleRate),
		hotkeys:     hotkey.NewManager(),
		writer:      clipboard.NewWriter(),
		history:     hist,
		cues:        true,
	}

	ref := &appRef{}
	var tui *overlay.Terminal
	var stopTray func()
	done := make(chan struct{})
	switch {
	case fe != nil:
		d.window, d.screen, d.tray = fe.window, fe.screen, fe.tray
		ref = fe.ref
	case ui == uiTerminal:
		tui = overlay.NewTerminal(hint(settings), func() { close(done) })
		d.window, d.term = tui, tui
	default:
		d.window = &overlay.Headless{}
	}
	if fe == nil && *trayFlag {
		d.tray, stopTray = tray.Start(ref.actions())
	}

	a := newApp(d)
	store.Watch(func(err error) {
		log.Warnf("%v", err)
		a.ui.Error(err)
	})

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			log.Info("shutting down")
			a.close()
			if stopTray != nil {
				stopTray()
			}
			if tui != nil {
				tui.Quit()
			}
			actx.Close()
			log.Close()
			if fe != nil && fe.quit != nil {
				fe.quit()
			}
			os.Exit(0)
		})
	}
	ref.set(a, shutdown)

	sig := make(chan os.Signal, 1)
	signals.NotifyShutdown(sig)
	go func() {
		<-sig
		shutdown()
	}()

	if tui != nil {
		if err := tui.Run(); err != nil {
			log.Errorf("terminal ui: %v", err)
		}
		shutdown()
	}
	<-done
	shutdown()
}

// hint is the idle help line of the terminal UI.
func hint(s *config.Settings) string {
	mode := "hold"
	if !s.PushToTalk {
		mode = "press"
	}
	return fmt.Sprintf("%s %s to dictate · %s cancels · q quits", mode, s.Bindings["transcribe"], s.Bindings["cancel"])
}
