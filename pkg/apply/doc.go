// Package apply executes a parsed script against a store.
//
// Groups run strictly in document order. For each group the engine opens
// (creating as needed) the container, then coerces and writes each directive
// in textual order, and releases the container handle before the next group.
// Nothing is held across groups.
//
// Application is fail-fast and non-transactional: the first parse, coercion,
// limit or store error stops the run and writes that already reached the
// store stay there. Apply, don't simulate.
//
// Re-running a script re-issues every write; there is no "already set"
// detection.
package apply
