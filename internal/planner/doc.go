// Package planner handles the planning phase of a layout migration.
//
// The planner inspects a legacy resource tree without modifying it and
// produces a deterministic MigrationPlan: the directories to create, the
// files and directories to move, and the legacy tree to remove, grouped by
// the stage each operation completes.
//
// Key responsibilities:
//   - Verify the legacy entries the migration depends on are present
//   - Enumerate Android resource directories to relocate
//   - Detect destinations that are already occupied
//   - Report legacy entries that would be discarded (residue)
package planner
