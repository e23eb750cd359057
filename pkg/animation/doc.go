// Package animation drives time-based progress from a display frame clock.
//
// A [FrameSource] delivers one callback per display refresh with the time
// since the previous frame. [FrameScheduler] is the in-process source that
// tests and engines step by hand, and [DisplayLink] steps one from a
// real-time ticker.
//
// [ProgressRunner] subscribes to a frame source for the length of a run,
// accumulates elapsed time in either direction, and reports the elapsed
// fraction to a [ProgressObserver] until the run comes within a tolerance
// of its end (or, when reversed, of zero):
//
//	frames := animation.NewFrameScheduler()
//	runner := animation.NewProgressRunner(frames)
//	runner.SetObserver(animation.Weak(view))
//	runner.Start(0, 300*time.Millisecond, false)
//	for runner.IsRunning() {
//		frames.Step(time.Second / 60)
//	}
//
// Runners are confined to the goroutine that steps their source. Use
// [DisplayLink.Dispatch] to reach them from elsewhere.
package animation
