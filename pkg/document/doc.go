// Package document reads process documents and writes layout results.
//
// # Format
//
// A document is YAML or JSON with the same structure:
//
//	id: definitions_1
//	collaboration:
//	  id: collab_1
//	  participants: [{id: pool_a, name: A, process: proc_a}]
//	  messageFlows: [{id: mf1, source: task_a, target: pool_b}]
//	processes:
//	  - id: proc_a
//	    lanes: [{id: lane_1, name: L1, nodes: [start, task_a]}]
//	    nodes:
//	      - {id: start, kind: startEvent}
//	      - {id: task_a, kind: task, name: Do it}
//	      - {id: sub, kind: subProcess, expanded: true, nodes: [...], flows: [...]}
//	      - {id: timer, kind: boundaryEvent, attachedTo: task_a}
//	      - {id: doc, kind: dataObjectReference}
//	    flows: [{id: f1, source: start, target: task_a}]
//	    associations: [{id: da1, source: doc, target: task_a}]
//
// Node kinds use the BPMN element names (task, userTask, exclusiveGateway,
// dataStoreReference, ...). Sizes default per kind and may be overridden with
// width and height. Message flows may start or end at a participant.
//
// # Reading
//
// [Read], [Decode] and [ReadFile] resolve every reference by ID and validate
// the result with [model.Definitions.Validate]. Unknown fields are rejected.
//
// # Writing
//
// [WriteResult] encodes a [layouter.Result]. [WriteDefinitions] writes a
// document back out, and [Canonical] gives the compact JSON form used for
// cache keys.
package document
