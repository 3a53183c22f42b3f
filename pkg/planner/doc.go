/*
Package planner derives test plans by searching the reachability graph of a workflow.

Nodes are domain.Snapshot values identified by Snapshot.Key, so a machine whose
context changes on every loop yields distinct nodes. Edges come from applying
the transition engine to every enumerated event at every discovered node; only
fired transitions produce edges.

ShortestPaths performs a breadth-first search and returns exactly one Plan per
reachable node. SimplePaths performs a depth-first search and returns one Plan
per route that never revisits a node. WithFilter prunes nodes from both the
plan set and further expansion, and is the way to bound workflows whose context
grows without limit.
*/
package planner
