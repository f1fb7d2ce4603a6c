// Command riskreport fetches a risk table snapshot over NATS and saves it as CSV.
package main

func main() {
	Execute()
}
