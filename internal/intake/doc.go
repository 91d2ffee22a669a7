// Package intake deposits input files into the orchestrator's watched intake
// directory using the <name>.part then rename convention.
package intake
