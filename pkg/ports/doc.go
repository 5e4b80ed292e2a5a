/*
Package ports defines the driven ports (interfaces) of tend.

These interfaces decouple the task service from storage implementations, allowing
the same ordering and identifier rules to run on memory, Redis or SQLite.

# Key Interfaces

  - ItemRepository: Stores to-do items, assigns IDs and returns the sorted view.
  - Seeder: Pre-populates a repository with items that keep their IDs.
  - DistributedLocker: Provides distributed locking for mutations across replicas.

RunItemRepositoryContract is the shared test suite every ItemRepository adapter runs.
*/
package ports
