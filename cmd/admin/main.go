// Command admin is the operator CLI: it drives the server's HTTP API for
// day-to-day tasks and reads the on-disk audit/backup artifacts directly
// for offline ones.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"culturewalk.ai/internal/overrides"
	"culturewalk.ai/internal/persistence/audit"
	"culturewalk.ai/internal/persistence/backup"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "login":
			loginCmd(os.Args[2:])
			return
		case "scenes":
			scenesCmd(os.Args[2:])
			return
		case "export":
			exportCmd(os.Args[2:])
			return
		case "import":
			importCmd(os.Args[2:])
			return
		case "scan":
			scanCmd(os.Args[2:])
			return
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "backups":
			backupsCmd(os.Args[2:])
			return
		case "restore":
			restoreCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <login|scenes|export|import|scan|audit|backups|restore> [flags]")
	os.Exit(2)
}

func loginCmd(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", "http://127.0.0.1:8080", "server base url")
	password := fs.String("password", "", "admin password (or set CW_ADMIN_PASSWORD)")
	_ = fs.Parse(args)

	pw := *password
	if pw == "" {
		pw = os.Getenv("CW_ADMIN_PASSWORD")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "missing -password")
		os.Exit(2)
	}
	body, _ := json.Marshal(map[string]string{"password": pw})
	resp := postJSON(*server+"/v1/auth/login", "", body)
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp, &out); err != nil || out.Token == "" {
		fmt.Fprintln(os.Stderr, "login failed:", string(resp))
		os.Exit(1)
	}
	// Print just the token so it can be captured into CW_ADMIN_TOKEN.
	fmt.Println(out.Token)
}

func scenesCmd(args []string) {
	fs := flag.NewFlagSet("scenes", flag.ExitOnError)
	server := fs.String("server", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	resp := getJSON(*server + "/v1/scenes")
	var out struct {
		Scenes []struct {
			ID   string `json:"id"`
			Meta struct {
				Name  string   `json:"name"`
				Icon  string   `json:"icon"`
				Items []string `json:"items"`
			} `json:"meta"`
			Current bool `json:"current"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	for _, s := range out.Scenes {
		marker := " "
		if s.Current {
			marker = "*"
		}
		fmt.Printf("%s %-16s %s %s (%d items)\n", marker, s.ID, s.Meta.Icon, s.Meta.Name, len(s.Meta.Items))
	}
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	server := fs.String("server", "http://127.0.0.1:8080", "server base url")
	token := fs.String("token", "", "admin token (or set CW_ADMIN_TOKEN)")
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	resp := getAuthed(*server+"/v1/admin/export", resolveToken(*token))
	if *out == "" {
		fmt.Println(string(resp))
		return
	}
	if err := os.WriteFile(*out, resp, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d bytes to %s\n", len(resp), *out)
}

func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	server := fs.String("server", "http://127.0.0.1:8080", "server base url")
	token := fs.String("token", "", "admin token (or set CW_ADMIN_TOKEN)")
	file := fs.String("file", "", "export payload to import")
	_ = fs.Parse(args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	resp := postJSON(*server+"/v1/admin/import", resolveToken(*token), raw)
	var out struct {
		OK            bool     `json:"ok"`
		Scenes        int      `json:"scenes"`
		MissingModels []string `json:"missingModels"`
		Code          string   `json:"code"`
		Message       string   `json:"message"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	if !out.OK {
		fmt.Fprintf(os.Stderr, "import rejected: %s %s\n", out.Code, out.Message)
		os.Exit(1)
	}
	fmt.Printf("import ok: %d scenes\n", out.Scenes)
	for _, m := range out.MissingModels {
		fmt.Printf("  missing model: %s\n", m)
	}
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	server := fs.String("server", "http://127.0.0.1:8080", "server base url")
	token := fs.String("token", "", "admin token (or set CW_ADMIN_TOKEN)")
	_ = fs.Parse(args)

	resp := postJSON(*server+"/v1/admin/models/scan", resolveToken(*token), nil)
	var out struct {
		UpdatedAt string   `json:"updatedAt"`
		Files     []string `json:"files"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	fmt.Printf("manifest updated %s: %d files\n", out.UpdatedAt, len(out.Files))
}

// auditCmd reads the compressed audit log straight off disk; the server
// does not need to be running.
func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	op := fs.String("op", "", "filter by op (e.g. point.add, import)")
	sceneID := fs.String("scene", "", "filter by scene id")
	_ = fs.Parse(args)

	dir := filepath.Join(*dataDir, "audit")
	ents, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl.zst") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := dumpAuditFile(filepath.Join(dir, name), *op, *sceneID); err != nil {
			fmt.Fprintln(os.Stderr, name+":", err)
			os.Exit(1)
		}
	}
}

func dumpAuditFile(path, opFilter, sceneFilter string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var e audit.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if opFilter != "" && e.Op != opFilter {
			continue
		}
		if sceneFilter != "" && e.SceneID != sceneFilter {
			continue
		}
		fmt.Printf("%s %-14s scene=%s point=%s %s\n", e.Time, e.Op, e.SceneID, e.PointID, e.Detail)
	}
	return sc.Err()
}

func backupsCmd(args []string) {
	fs := flag.NewFlagSet("backups", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	keep := fs.Int("prune", 0, "prune to the newest N backups (0 = list only)")
	_ = fs.Parse(args)

	dir := filepath.Join(*dataDir, "backups")
	if *keep > 0 {
		if err := backup.Prune(dir, *keep); err != nil {
			fmt.Fprintln(os.Stderr, "prune:", err)
			os.Exit(1)
		}
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		hdr, blob, err := backup.Read(path)
		if err != nil {
			fmt.Printf("%s  (unreadable: %v)\n", e.Name(), err)
			continue
		}
		fmt.Printf("%s  created=%s reason=%s size=%d\n", e.Name(), hdr.CreatedAt, hdr.Reason, len(blob))
	}
}

// restoreCmd puts a backed-up override blob back in place. Offline
// operation: run it against a stopped server.
func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	file := fs.String("file", "", "backup file (default: latest)")
	_ = fs.Parse(args)

	path := *file
	if path == "" {
		path = backup.Latest(filepath.Join(*dataDir, "backups"))
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no backup found")
		os.Exit(2)
	}
	hdr, blob, err := backup.Read(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read backup:", err)
		os.Exit(1)
	}
	dst := filepath.Join(*dataDir, overrides.BlobName)
	if err := os.WriteFile(dst, blob, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("restored %s (created=%s reason=%s) to %s\n", filepath.Base(path), hdr.CreatedAt, hdr.Reason, dst)
}

func resolveToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv("CW_ADMIN_TOKEN")
}

func getJSON(url string) []byte {
	return doRequest(http.MethodGet, url, "", nil)
}

func getAuthed(url, token string) []byte {
	return doRequest(http.MethodGet, url, token, nil)
}

func postJSON(url, token string, body []byte) []byte {
	return doRequest(http.MethodPost, url, token, body)
}

func doRequest(method, url, token string, body []byte) []byte {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read response:", err)
		os.Exit(1)
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		fmt.Fprintln(os.Stderr, "forbidden: missing or expired admin token (run: admin login)")
		os.Exit(1)
	}
	return data
}
