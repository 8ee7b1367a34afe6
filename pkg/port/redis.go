package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/redcon"
)

const (
	RedisOk          = "OK"
	defaultScanCount = 10 // How many members SSCAN examines when no COUNT option is given.
)

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool      // Closes the connection if true.
	writeNil        bool      // Writes a nil value if true.
	err             *string   // Error to return if set.
	writeInt        *int      // Writes an integer value if set.
	writeBulk       *string   // Writes a bulk string if set.
	writeArray      *[]string // Writes an array of bulk strings if set.
	writeScan       *scanPage // Writes a cursor style scan reply if set.
	writeString     string    // Writes a simple string otherwise.
}

// scanPage is the two part SSCAN reply: the cursor to resume from and the members of this page.
type scanPage struct {
	cursor  int
	members []string
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(items []string) redisOutput {
	return redisOutput{writeArray: &items}
}

func writeRedisScan(cursor int, members []string) redisOutput {
	return redisOutput{writeScan: &scanPage{cursor: cursor, members: members}}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

func wrongArity(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

// parseScanArgs reads the SSCAN argument list: a cursor followed by optional MATCH and COUNT pairs in any order.
func parseScanArgs(args []string) (cursor int, pattern string, count int, err error) {
	cursor, err = strconv.Atoi(args[0])
	if err != nil || cursor < 0 {
		return 0, "", 0, errors.New("invalid cursor")
	}
	count = defaultScanCount
	for i := 1; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return 0, "", 0, errors.New("syntax error")
		}
		switch strings.ToUpper(args[i]) {
		case "MATCH":
			pattern = args[i+1]
		case "COUNT":
			count, err = strconv.Atoi(args[i+1])
			if err != nil || count < 1 {
				return 0, "", 0, errors.New("value is not an integer or out of range")
			}
		default:
			return 0, "", 0, errors.New("syntax error")
		}
	}
	return cursor, pattern, count, nil
}

type redisHandler struct {
	store *SetStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store *SetStore) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil store")
	}
	return &redisHandler{store: store}, nil
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	switch strings.ToUpper(cmd.command) { // Commands are case insensitive.
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "SET":
		if len(cmd.args) != 2 {
			return wrongArity(cmd.command)
		}
		rh.store.SetKV(cmd.args[0] /*key*/, cmd.args[1] /*value*/)
		return writeRedisString(RedisOk)
	case "GET":
		if len(cmd.args) != 1 {
			return wrongArity(cmd.command)
		}
		value, found := rh.store.GetKV(cmd.args[0])
		if !found {
			return writeRedisNil()
		}
		return writeRedisBulk(value)
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArity(cmd.command)
		}
		return writeRedisInt(rh.store.DelKV(cmd.args...))
	case "SADD":
		if len(cmd.args) < 1 {
			return wrongArity(cmd.command)
		}
		added := 0
		for _, member := range cmd.args {
			if rh.store.AddMember(member) {
				added++
			}
		}
		return writeRedisInt(added)
	case "SREM":
		if len(cmd.args) < 1 {
			return wrongArity(cmd.command)
		}
		removed := 0
		for _, member := range cmd.args {
			if rh.store.RemoveMember(member) {
				removed++
			}
		}
		return writeRedisInt(removed)
	case "SISMEMBER":
		if len(cmd.args) != 1 {
			return wrongArity(cmd.command)
		}
		if rh.store.IsMember(cmd.args[0]) {
			return writeRedisInt(1)
		}
		return writeRedisInt(0)
	case "SCARD":
		if len(cmd.args) != 0 {
			return wrongArity(cmd.command)
		}
		return writeRedisInt(rh.store.Card())
	case "SMEMBERS":
		if len(cmd.args) != 0 {
			return wrongArity(cmd.command)
		}
		return writeRedisArray(rh.store.Members())
	case "SPOP":
		if len(cmd.args) != 0 {
			return wrongArity(cmd.command)
		}
		member, found := rh.store.PopMin()
		if !found {
			return writeRedisNil()
		}
		return writeRedisBulk(member)
	case "SSCAN":
		if len(cmd.args) < 1 {
			return wrongArity(cmd.command)
		}
		cursor, pattern, count, err := parseScanArgs(cmd.args)
		if err != nil {
			return writeRedisError(err)
		}
		nextCursor, members := rh.store.Scan(cursor, pattern, count)
		return writeRedisScan(nextCursor, members)
	case "FLUSHALL":
		if len(cmd.args) != 0 {
			return wrongArity(cmd.command)
		}
		rh.store.FlushAll()
		return writeRedisString(RedisOk)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// RunRedisServer starts a Redis protocol server that serves the provided SetStore.
func RunRedisServer(ctx context.Context, store *SetStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand.
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			output := redisHandler.handle(command)
			switch {
			case output.closeConnection:
				conn.WriteString(output.writeString)
				if err := conn.Close(); err != nil {
					slog.Error("failed to close connection", "error", err)
				}
			case output.err != nil:
				conn.WriteError(*output.err)
			case output.writeNil:
				conn.WriteNull()
			case output.writeInt != nil:
				conn.WriteInt(*output.writeInt)
			case output.writeBulk != nil:
				conn.WriteBulkString(*output.writeBulk)
			case output.writeArray != nil:
				conn.WriteArray(len(*output.writeArray))
				for _, item := range *output.writeArray {
					conn.WriteBulkString(item)
				}
			case output.writeScan != nil:
				conn.WriteArray(2)
				conn.WriteBulkString(strconv.Itoa(output.writeScan.cursor))
				conn.WriteArray(len(output.writeScan.members))
				for _, member := range output.writeScan.members {
					conn.WriteBulkString(member)
				}
			default:
				conn.WriteString(output.writeString)
			}
		},
		/*accept*/ func(conn redcon.Conn) bool {
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("connection closed with error", "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		storeErr := store.Close()
		if exitErr := errors.Join(serverErr, storeErr); exitErr != nil {
			return fmt.Errorf("failed to close pomelo: %w", exitErr)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
