package coordinator

import "uttr/log"

// HandleCancel aborts the current recording. It only acts on a press while
// Recording; an in-flight transcription of an earlier recording is left
// alone and its result is dropped on arrival if a newer session exists.
func (c *Coordinator) HandleCancel(bindingID string, pressed bool) {
	if !pressed {
		log.Ignored(bindingID, "", pressed, c.State().String())
		return
	}

	c.capMu.Lock()
	defer c.capMu.Unlock()

	c.mu.Lock()
	st := c.state
	if st != Recording {
		c.mu.Unlock()
		log.Ignored(bindingID, "", pressed, st.String())
		return
	}
	gen, id := c.abortLocked()
	c.mu.Unlock()

	log.Transition(id, gen, Recording.String(), Idle.String(), "cancel:"+bindingID)
	c.cancelSteps()
}

// CancelCurrentOperation brings the application back to a safe idle state
// from any caller. It reports whether a recording was interrupted.
//
// The state moves to Idle and the generation is bumped before capture is
// torn down, all under capMu: a session whose setup is still pending sees
// the new generation and never starts capture, and a press arriving after
// the transition sets up only once the teardown is done.
func (c *Coordinator) CancelCurrentOperation(reason string) bool {
	c.capMu.Lock()
	defer c.capMu.Unlock()

	c.mu.Lock()
	st := c.state
	var gen uint64
	var id string
	if st != Idle {
		gen, id = c.abortLocked()
	}
	c.mu.Unlock()

	if st != Idle {
		log.Transition(id, gen, st.String(), Idle.String(), "cancel:"+reason)
	}
	wasRecording := c.cancelSteps()
	if st == Idle {
		log.Debugf("cancel (%s): nothing active, recording=%v", reason, wasRecording)
	}
	return wasRecording
}

// abortLocked forces Idle and bumps the generation so a pending setup or
// transcription of the old session is discarded. c.mu must be held.
func (c *Coordinator) abortLocked() (uint64, string) {
	c.state = Idle
	c.owner = trigger{}
	c.gen++
	return c.gen, c.sessID
}

// cancelSteps tears down capture and UI, each step best-effort. It reports
// whether the recorder was capturing. c.capMu must be held.
func (c *Coordinator) cancelSteps() bool {
	c.unregisterCancel()

	active := c.rec.IsActive()
	c.rec.Cancel()
	if active {
		c.ui.Cue(CueCancel)
	}

	c.ui.SetTray(TrayIdle)
	c.ui.Hide()
	c.tr.MaybeUnload("cancellation")
	return active
}
