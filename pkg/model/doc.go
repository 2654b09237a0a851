// Package model holds the process document as the layout engine sees it.
//
// A [Definitions] value owns root [Process] values, each with its flow nodes,
// sequence flows, data associations and lane tree, plus an optional
// [Collaboration] of participants and message flows. Sub-processes are
// processes of their own, linked to the parent through their container node.
//
// Elements are [process.Node] values. The builder methods ([Process.AddNode],
// [Process.Connect], [NewLane]) keep the derived node fields (default size,
// declared neighbours, owning lane) consistent, so documents built in code
// and documents decoded by package document look the same to the layouter.
package model
