package layouter_test

import (
	"context"
	"fmt"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

func ExampleLayouter_Layout() {
	p := model.NewProcess("orders", "Orders")
	start := p.AddNode(&process.Node{ID: "start", Kind: process.KindStartEvent})
	check := p.AddNode(&process.Node{ID: "check", Kind: process.KindTask})
	end := p.AddNode(&process.Node{ID: "end", Kind: process.KindEndEvent})
	p.Connect("f1", start, check)
	p.Connect("f2", check, end)

	defs := &model.Definitions{ID: "defs", Processes: []*model.Process{p}}
	result, err := layouter.New(config.DefaultLayout()).Layout(context.Background(), defs)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, s := range result.Shapes() {
		fmt.Println(s.Element, s.Bounds.X, s.Bounds.Y)
	}
	for _, e := range result.Edges() {
		fmt.Println(e.Element, e.Waypoints)
	}
	// Output:
	// start 57 52
	// check 175 30
	// end 357 52
	// f1 [93,70 175,70]
	// f2 [275,70 357,70]
}
