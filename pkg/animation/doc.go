// Package animation synchronizes property animations on layers and
// schedules dependent animations across targets.
//
// # Core Components
//
//   - [Property]: one keyframe animation of one key on one layer. Applying
//     it captures the presented value as its start, hands off velocity from
//     whatever spring it replaces, and installs sampled keyframes.
//
//   - [Group]: properties applied to one layer atomically. The group
//     resolves a single duration from its primary members with a
//     [TimingPolicy] and retimes every member to it.
//
//   - [Sequence]: a root plus trigger edges. Each frame the sequence polls
//     the time or value progress of applied parents and applies children
//     whose threshold is met. With autoreverse it plays the cached reverse
//     of every node back and forth.
//
//   - [Registry]: named sequences scoped to one layer, torn down with it.
//
// # Basic Usage
//
//	move, _ := animation.NewGroup([]*animation.Property{
//	    animation.NewProperty("position", easing.Of(easing.OutCubic), value.Point{X: 100, Y: 100}, 500*time.Millisecond, true),
//	}, animation.MaxDuration, animation.Autoreverse{})
//	fade, _ := animation.NewGroup([]*animation.Property{
//	    animation.NewProperty("opacity", easing.Of(easing.Linear), value.Scalar(0), 300*time.Millisecond, false),
//	}, animation.MaxDuration, animation.Autoreverse{})
//
//	seq, _ := animation.NewSequence(move, box)
//	seq.AddEdge(fade, badge, true, 0.5)
//	seq.Start()
//
//	// once per frame
//	animation.StepTickers()
//
// Everything runs on the frame loop's goroutine. Faults on the frame path
// are reported through [errors.Report] and never propagate.
package animation
