/*
Package ports defines the driven ports (interfaces) for waypoint.

These interfaces decouple the core from external implementations, allowing
coverage to be accumulated in memory for a single process or in a shared
backend when several runners execute plans of the same run.

# Key Interfaces

  - CoverageStore: records visited states and transitions per run.
*/
package ports
