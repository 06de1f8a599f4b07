// Package marks is a declarative visualization grammar: a tree of [Mark]
// specifications is bound to data and turned into a retained tree of
// [Item] values that a renderer draws.
//
// # Quick start
//
// An [Engine] owns the scheduler goroutine and the worker pool. A [Scene]
// is the root panel mark; child marks are added to it and configured with
// chained setters taking constants or functions of the item:
//
//	e := marks.NewEngine()
//	defer e.Close()
//
//	scene := marks.NewScene(e, "chart")
//	scene.Width(400).Height(300)
//
//	bars := scene.Add(marks.MarkBar).
//		Data([]float64{1, 1.2, 1.7, 1.5, 0.7}).
//		Left(func(it *marks.Item) float64 { return float64(it.Index) * 25 }).
//		Width(20).
//		Bottom(0).
//		Height(func(it *marks.Item) float64 { return it.Data.(float64) * 80 })
//	bars.Fill("steelblue")
//
//	scene.UpdateAndWait()
//
// # Properties
//
// Every mark inherits the defaults of its [MarkType] and, when added to a
// non-panel mark or extended with [Mark.Extend], the properties of its
// prototype. Before each update the chain is flattened into a
// [PropertySet]; the mark's [Evaluator] is only rebuilt when a definition
// changed identity. Geometry left undefined is implied from the parent
// panel's size, so left and width imply right.
//
// # Updates and animation
//
// [Scene.Update] reconciles each mark's items with its data and evaluates
// their properties. [Scene.Animate] does the same keyed by the mark's key
// property: reused items keep their identity, new items enter from the
// enter properties and departed items stay as zombies until their exit
// transition ends. Transitions and other [Task] values run on the
// [Scheduler]; a post task, such as the display in the render package,
// runs once after every tick that ran work.
//
// # Strategies
//
// Two evaluator strategies ([EvaluatorCompiled], [EvaluatorGeneric]) and
// two updater strategies ([UpdaterSerial], [UpdaterParallel]) are
// interchangeable and selected with [WithEvaluator] and [WithUpdater].
//
// Easing curves come from [gween].
//
// [gween]: https://github.com/tanema/gween
package marks
