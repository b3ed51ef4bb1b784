// Command yads runs the web project and its maintenance tasks.
package main

func main() {
	Execute()
}
