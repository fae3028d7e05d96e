// Package placement picks the worker a task should run on.
//
// The policy has three tiers, evaluated in order with the first hit winning:
//
//  1. Data-local: the first entry of the task's data locations whose host is
//     the local host.
//  2. Worker-local: the first entry of the cluster's worker list whose host
//     is the local host.
//  3. Random: a uniform pick from the worker list.
//
// Hosts are matched by name, not by IP. The resolver holds no mutable state
// and can be shared between goroutines.
package placement
