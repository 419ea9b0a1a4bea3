package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Althra/SDSQL/internal/cliutil"
	"github.com/Althra/SDSQL/internal/transport"
	"github.com/Althra/SDSQL/internal/wire"
)

const cliName = "sdsql"

func main() {
	addr := flag.String("addr", transport.DefaultListenAddr, "server address")
	flag.Parse()

	conn, err := transport.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: could not connect to %s: %v\n", cliName, *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	session := &clientSession{conn: conn}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print(cliName, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print(cliName, "> ")
			continue
		}
		if line == ".exit" {
			break
		}
		if err := session.execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Print(cliName, "> ")
	}
}

type clientSession struct {
	conn  *transport.Conn
	token string
}

// execute tokenizes one input line into a verb and its arguments and
// dispatches it, per SPEC_FULL.md §6's CLI verb grammar - a trivial
// tokenizer standing in for the SQL lexer/parser spec.md places out of
// scope on the client.
func (s *clientSession) execute(line string) error {
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "login":
		return s.login(args)
	case "ping":
		return s.ping()
	case "createdb":
		return s.simpleOp(wire.OpCreateDatabase, requireArg(args, 0), "")
	case "dropdb":
		return s.simpleOp(wire.OpDropDatabase, requireArg(args, 0), "")
	case "use":
		return s.simpleOp(wire.OpUseDatabase, requireArg(args, 0), "")
	case "createtable":
		return s.createTable(args)
	case "droptable":
		return s.simpleOp(wire.OpDropTable, "", requireArg(args, 0))
	case "insert":
		return s.insert(args)
	case "select":
		return s.selectRows(args)
	case "update":
		return s.update(args)
	case "delete":
		return s.delete(args)
	case "begin":
		return s.txnOp(wire.OpBeginTransaction)
	case "commit":
		return s.txnOp(wire.OpCommit)
	case "rollback":
		return s.txnOp(wire.OpRollback)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

func requireArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (s *clientSession) login(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: login <user> <pass>")
	}
	if err := s.conn.SendMessage(&wire.LoginRequest{Username: args[0], Password: args[1]}); err != nil {
		return err
	}
	resp, err := s.conn.ReceiveMessage()
	if err != nil {
		return err
	}
	switch m := resp.(type) {
	case *wire.LoginSuccess:
		s.token = m.SessionToken
		fmt.Printf("logged in as %s (user_id=%d)\n", args[0], m.UserID)
		return nil
	case *wire.LoginFailure:
		return fmt.Errorf("login failed: %s", m.ErrorMessage)
	default:
		return fmt.Errorf("unexpected response to login")
	}
}

func (s *clientSession) ping() error {
	if err := s.conn.SendMessage(&wire.PingRequest{TimestampMs: 0}); err != nil {
		return err
	}
	resp, err := s.conn.ReceiveMessage()
	if err != nil {
		return err
	}
	pong, ok := resp.(*wire.PongResponse)
	if !ok {
		return fmt.Errorf("unexpected response to ping")
	}
	fmt.Printf("pong: server_timestamp_ms=%d\n", pong.ServerTimestampMs)
	return nil
}

func (s *clientSession) simpleOp(op wire.Operation, dbName, tableName string) error {
	req := &wire.QueryRequest{Operation: op, SessionToken: s.token, DBName: dbName, TableName: tableName}
	return s.roundTrip(req)
}

func (s *clientSession) txnOp(op wire.Operation) error {
	req := &wire.QueryRequest{Operation: op, SessionToken: s.token}
	return s.roundTrip(req)
}

// createTable parses `createtable <name> <col>:<TYPE>[:pk] ...`.
func (s *clientSession) createTable(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: createtable <name> <col>:<TYPE>[:pk] ...")
	}
	cols := make([]wire.ColumnDef, 0, len(args)-1)
	for _, spec := range args[1:] {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 {
			return fmt.Errorf("invalid column spec %q", spec)
		}
		typ, err := parseDataType(parts[1])
		if err != nil {
			return err
		}
		cols = append(cols, wire.ColumnDef{Name: parts[0], Type: typ, IsPrimary: len(parts) > 2 && parts[2] == "pk"})
	}
	req := &wire.QueryRequest{Operation: wire.OpCreateTable, SessionToken: s.token, TableName: args[0], Columns: cols}
	return s.roundTrip(req)
}

func parseDataType(s string) (wire.DataType, error) {
	switch strings.ToUpper(s) {
	case "INT":
		return wire.TypeInt, nil
	case "DOUBLE":
		return wire.TypeDouble, nil
	case "STRING":
		return wire.TypeString, nil
	case "BOOL":
		return wire.TypeBool, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// insert parses `insert <table> <col>=<value> ...`.
func (s *clientSession) insert(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: insert <table> <col>=<value> ...")
	}
	var cols []string
	var vals []wire.Literal
	for _, assign := range args[1:] {
		k, v, ok := strings.Cut(assign, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q", assign)
		}
		cols = append(cols, k)
		vals = append(vals, literalFor(v))
	}
	req := &wire.QueryRequest{Operation: wire.OpInsert, SessionToken: s.token, TableName: args[0], InsertValues: vals, InsertColumns: cols}
	return s.roundTrip(req)
}

// literalFor infers a DataType from the token's shape: quoted or
// non-numeric text is STRING, integers are INT, anything else with a
// decimal point is DOUBLE - mirroring spec.md §6's note that client-side
// literal typing comes from token shape, not a declared schema.
func literalFor(tok string) wire.Literal {
	if strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") {
		return wire.Literal{Type: wire.TypeString, Value: strings.Trim(tok, "'")}
	}
	if _, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return wire.Literal{Type: wire.TypeInt, Value: tok}
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return wire.Literal{Type: wire.TypeDouble, Value: tok}
	}
	return wire.Literal{Type: wire.TypeString, Value: tok}
}

// selectRows parses `select <table> [where <cond>] [orderby <col>]`.
func (s *clientSession) selectRows(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: select <table> [where <cond>] [orderby <col>]")
	}
	req := &wire.QueryRequest{Operation: wire.OpSelect, SessionToken: s.token, TableName: args[0]}
	rest := args[1:]
	orderBy, rest := extractClause(rest, "orderby")
	where, _ := extractClause(rest, "where")
	if where != "" {
		req.HasWhere = true
		req.WhereExpr = where
	}
	req.OrderByColumn = orderBy

	if err := s.conn.SendMessage(req); err != nil {
		return err
	}
	resp, err := s.conn.ReceiveMessage()
	if err != nil {
		return err
	}
	qr, ok := resp.(*wire.QueryResponse)
	if !ok {
		return fmt.Errorf("unexpected response")
	}
	if !qr.Success {
		return fmt.Errorf("%s", qr.ErrorMessage)
	}
	if qr.Warning != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", qr.Warning)
	}
	cliutil.PrintTable(os.Stdout, qr.ColumnNames, qr.Rows)
	return nil
}

// extractClause pulls out `<keyword> <rest-joined-with-spaces>` from
// args, returning the clause text and the args with that keyword and
// everything after it removed.
func extractClause(args []string, keyword string) (string, []string) {
	for i, a := range args {
		if strings.EqualFold(a, keyword) {
			return strings.Join(args[i+1:], " "), args[:i]
		}
	}
	return "", args
}

func (s *clientSession) update(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: update <table> <col>=<value> ... [where <cond>]")
	}
	tableName := args[0]
	rest, whereArgs := splitOnWhere(args[1:])
	var clauses []wire.SetClause
	for _, assign := range rest {
		k, v, ok := strings.Cut(assign, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q", assign)
		}
		clauses = append(clauses, wire.SetClause{Column: k, Value: literalFor(v)})
	}
	req := &wire.QueryRequest{Operation: wire.OpUpdate, SessionToken: s.token, TableName: tableName, UpdateClauses: clauses}
	if len(whereArgs) > 0 {
		req.HasWhere = true
		req.WhereExpr = strings.Join(whereArgs, " ")
	}
	return s.roundTrip(req)
}

func (s *clientSession) delete(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete <table> [where <cond>]")
	}
	req := &wire.QueryRequest{Operation: wire.OpDelete, SessionToken: s.token, TableName: args[0]}
	where, _ := extractClause(args[1:], "where")
	if where != "" {
		req.HasWhere = true
		req.WhereExpr = where
	}
	return s.roundTrip(req)
}

func splitOnWhere(args []string) (assignments, where []string) {
	for i, a := range args {
		if strings.EqualFold(a, "where") {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func (s *clientSession) roundTrip(req *wire.QueryRequest) error {
	if err := s.conn.SendMessage(req); err != nil {
		return err
	}
	resp, err := s.conn.ReceiveMessage()
	if err != nil {
		return err
	}
	switch m := resp.(type) {
	case *wire.QueryResponse:
		if !m.Success {
			return fmt.Errorf("%s", m.ErrorMessage)
		}
		if m.Warning != "" {
			fmt.Fprintf(os.Stderr, "warning: %s\n", m.Warning)
		}
		if m.RowsAffected > 0 {
			fmt.Printf("ok (%d row(s) affected)\n", m.RowsAffected)
		} else {
			fmt.Println("ok")
		}
		return nil
	case *wire.ErrorResponse:
		return fmt.Errorf("server error %d: %s", m.ErrorCode, m.ErrorMessage)
	default:
		return fmt.Errorf("unexpected response")
	}
}
