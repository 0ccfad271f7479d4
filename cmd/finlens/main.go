// FinLens - cloud account audit scanner.
// Discover. Evaluate. Recommend.
package main

func main() {
	Execute()
}
