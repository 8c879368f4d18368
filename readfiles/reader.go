package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/gofunctional/mesh"
)

// ReadMeshFile picks a reader from the file extension: .su2, .msh (Gmsh 2.2), .mesh (vertices/edges/faces/volumes
// sections), .yaml or .yml
func ReadMeshFile(filename string) (m *mesh.Mesh, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		err = fmt.Errorf("unable to open file %s: %w", filename, err)
		return
	}
	defer file.Close()
	ext := strings.ToLower(filepath.Ext(filename))
	slog.Debug("reading mesh", "file", filename, "format", ext)
	switch ext {
	case ".su2":
		m, _, err = ReadSU2(bufio.NewReader(file))
	case ".msh":
		m, _, err = ReadGmsh(file)
	case ".mesh":
		m, err = ReadMorphoMesh(bufio.NewReader(file))
	case ".yaml", ".yml":
		var data []byte
		if data, err = io.ReadAll(file); err != nil {
			return
		}
		m, err = ReadYAMLMesh(data)
	default:
		err = fmt.Errorf("unknown mesh file type %q for %s", ext, filename)
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) != 0 {
			err = nil
		} else {
			if err == io.EOF {
				err = fmt.Errorf("early end of file")
			}
			return
		}
	}
	line = strings.TrimRight(line, "\r\n")
	return
}

func skipLines(n int, reader *bufio.Reader) (err error) {
	for i := 0; i < n; i++ {
		if _, err = getLine(reader); err != nil {
			return
		}
	}
	return
}

func getLineNoComments(reader *bufio.Reader, comment string) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, comment) {
			return
		}
	}
}
