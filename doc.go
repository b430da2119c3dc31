// Package quill is a programmatic vector animation engine. Scenes are
// described in Go: shapes built from cubic Bézier paths are arranged in a
// tree, animated on a timeline, nudged by per-frame updaters, and rendered
// to a deterministic sequence of frames.
//
// # Quick start
//
// Create a [Scene], add mobjects, schedule animations and run it. Frames go
// to a [FrameSink]:
//
//	cfg, _ := quill.DefaultConfig().WithQuality(quill.QualityLow)
//	scene, err := quill.NewScene(cfg,
//		quill.WithSink(quill.NewPNGSequence("out", "square")))
//	if err != nil {
//		log.Fatal(err)
//	}
//	sq := quill.NewSquare("square", 2).SetFill(quill.ColorBlue)
//	scene.Play(quill.Create(sq))
//	scene.Play(quill.Rotate(sq, math.Pi/2), quill.Shift(sq, quill.Vec2{X: 3}))
//	scene.Wait(0.5)
//	if err := scene.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// To watch instead of record, hand the scene to [Preview], which plays it
// in an [Ebitengine] window.
//
// # Object model
//
// Every drawable is a [Mobject]: zero or more [Path] values in local
// coordinates plus ordered children. A child's world transform is its
// parent's world transform composed with its own local transform. The tree
// is strict: [Mobject.AddChild] rejects a child that already has a parent
// or would create a cycle with a [TreeInvariantError].
//
// Scene space has Y pointing up. The [Camera] maps [Config.FrameWidth]
// scene units across the output width.
//
// # Animations
//
// An [Animation] mutates its target as a function of rate-mapped progress.
// Transform animations ([Shift], [Rotate], [Scale], [ApplyMatrix]) apply
// deltas, so overlapping animations and updaters on the same mobject add up.
// [Transform] morphs one family of paths into another after aligning
// segment counts (see [AlignPolicy]). Rate functions such as [Smooth] and
// [Linear] remap time; any [gween] easing can be used through [Ease].
//
// [Scene.Play], [Scene.PlaySequence] and [Scene.PlayStaggered] schedule at
// the scripting cursor; [Scene.Wait] moves it forward.
//
// # Ticks
//
// Each [Scene.Tick] applies the timeline, runs updaters in registration
// order, resolves a [Snapshot] of world-space paths and hands it to the
// [Renderer]. The clock is an integer frame index, so two runs of the same
// script produce identical snapshots. With [WithPipelining] rendering runs
// on a separate goroutine while the next tick is computed.
//
// # Backends
//
// [RasterRenderer] draws on the CPU with gogpu/gg. [GPURenderer] tessellates
// paths into triangle meshes and draws them with Ebitengine; it must run
// inside the Ebitengine game loop.
//
// Scenes can also be loaded from YAML with the script subpackage, and text
// outlines come from the glyph subpackage.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package quill
