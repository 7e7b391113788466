// gridgen writes a flat triangulated grid as a model file for data/models.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sgengine/sge/internal/scene"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Usage: gridgen <cols> <rows> <pregen-id> <output.yml>")
		os.Exit(1)
	}

	cols, err1 := strconv.Atoi(os.Args[1])
	rows, err2 := strconv.Atoi(os.Args[2])
	id, err3 := strconv.ParseUint(os.Args[3], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintln(os.Stderr, "cols, rows and pregen-id must be integers")
		os.Exit(1)
	}

	g := scene.Grid{Cols: cols, Rows: rows, PregenID: uint32(id)}
	data, err := g.Encode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := append([]byte(fmt.Sprintf("# %dx%d grid, auto-generated by gridgen\n", cols, rows)), data...)
	if err := os.WriteFile(os.Args[4], out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d vertices, %d triangles to %s\n", g.Vertices(), g.Triangles(), os.Args[4])
}
