// Command arenabench replays allocation workloads against arenakit allocators
// and reports the memory high-water mark of each.
package main

func main() {
	execute()
}
