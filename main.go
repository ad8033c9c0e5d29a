package main

import "github.com/beaux-riel/UltraEdge-sub000/cmd/ultraedge"

func main() {
	ultraedge.Execute()
}
