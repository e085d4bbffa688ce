package shogi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Game is a KIF game record: a starting position and the moves played.
type Game struct {
	initial *Position
	moves   []Move
	usi     []string
	foulEnd bool
}

type kifSquare struct {
	file int
	rank int
}

var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)
var terminalLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s*$`)
var fromSquareRe = regexp.MustCompile(`\((\d)(\d)\)`)

func LoadGameFromKIF(path string) (*Game, error) {
	lines, err := readKIFLines(path)
	if err != nil {
		return nil, err
	}
	return GameFromKIF(lines)
}

// GameFromKIF builds a game from KIF lines. Moves are resolved against the
// replayed position but not checked; see Validate.
func GameFromKIF(lines []string) (*Game, error) {
	initial, err := initialPositionFromKIF(lines)
	if err != nil {
		return nil, err
	}
	usi, err := parseKIFMoves(lines)
	if err != nil {
		return nil, err
	}
	game := &Game{initial: initial, usi: usi, foulEnd: isFoulEnd(lines)}
	pos := initial.Clone()
	for i, text := range usi {
		m, err := pos.ParseUSI(text)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if !pos.board.inBounds(m.ToX, m.ToY) {
			return nil, fmt.Errorf("move %d: %w: %s leaves the board", i+1, ErrInvalidMove, text)
		}
		game.moves = append(game.moves, m)
		pos.ApplyMove(m).Reverse()
	}
	return game, nil
}

func (g *Game) Initial() *Position {
	return g.initial.Clone()
}

func (g *Game) Moves() []Move {
	return append([]Move(nil), g.moves...)
}

// USIMoves returns the moves in USI notation as read from the record.
func (g *Game) USIMoves() []string {
	return append([]string(nil), g.usi...)
}

func (g *Game) MoveCount() int {
	return len(g.moves)
}

// FoulEnd reports whether the record ended with 反則勝ち or 反則負け, in
// which case the last move is expected to be illegal.
func (g *Game) FoulEnd() bool {
	return g.foulEnd
}

// PositionAt replays the first ply moves.
func (g *Game) PositionAt(ply int) (*Position, error) {
	if ply < 0 || ply > len(g.moves) {
		return nil, fmt.Errorf("move out of range: %d", ply)
	}
	pos := g.initial.Clone()
	for i := 0; i < ply; i++ {
		pos.ApplyMove(g.moves[i]).Reverse()
	}
	return pos, nil
}

func (g *Game) SFENAt(ply int) (string, error) {
	pos, err := g.PositionAt(ply)
	if err != nil {
		return "", err
	}
	return pos.SFEN(ply + 1), nil
}

// Validate replays the game checking every move. It returns the number of
// legal moves played; when a move is illegal the error wraps
// ErrIllegalMove and names the 1-based ply.
func (g *Game) Validate() (int, error) {
	pos := g.initial.Clone()
	for i, m := range g.moves {
		if !pos.CanMove(m) {
			return i, fmt.Errorf("move %d (%s): %w", i+1, g.usi[i], ErrIllegalMove)
		}
		pos.ApplyMove(m).Reverse()
	}
	return len(g.moves), nil
}

func readKIFLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeKIF(data)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines, nil
}

// decodeKIF accepts UTF-8 (with or without BOM) and falls back to
// Shift-JIS, the historical KIF encoding.
func decodeKIF(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode Shift-JIS KIF")
	}
	return string(decoded), nil
}

func parseKIFMoves(lines []string) ([]string, error) {
	var moves []string
	var prevDest *kifSquare
	for i, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		moveText := strings.TrimSpace(match[2])
		if moveText == "" {
			continue
		}
		move, dest, end, err := parseKIFMoveToken(moveText, prevDest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if end {
			break
		}
		moves = append(moves, move)
		prevDest = dest
	}
	return moves, nil
}

// parseKIFMoveToken turns one KIF move such as "７六歩(77)" or "同　銀(31)"
// into USI.
func parseKIFMoveToken(token string, prevDest *kifSquare) (string, *kifSquare, bool, error) {
	if isTerminalMove(token) {
		return "", nil, true, nil
	}
	work := strings.TrimSpace(token)
	var dest kifSquare
	if strings.HasPrefix(work, "同") {
		if prevDest == nil {
			return "", nil, false, fmt.Errorf("%w: 同 without previous destination", ErrInvalidMove)
		}
		dest = *prevDest
		work = strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(work, "同"), " 　"))
	} else {
		runes := []rune(work)
		if len(runes) < 2 {
			return "", nil, false, fmt.Errorf("%w: %s", ErrInvalidMove, token)
		}
		file, ok := parseFileRune(runes[0])
		if !ok {
			return "", nil, false, fmt.Errorf("%w: invalid destination file in %s", ErrInvalidMove, token)
		}
		rank, ok := kanjiNumber(runes[1])
		if !ok || rank > 9 {
			return "", nil, false, fmt.Errorf("%w: invalid destination rank in %s", ErrInvalidMove, token)
		}
		dest = kifSquare{file: file, rank: rank}
		work = strings.TrimSpace(string(runes[2:]))
	}

	var from kifSquare
	hasFrom := false
	if match := fromSquareRe.FindStringSubmatch(work); len(match) == 3 {
		from = kifSquare{file: int(match[1][0] - '0'), rank: int(match[2][0] - '0')}
		hasFrom = from.file >= 1 && from.rank >= 1
		work = fromSquareRe.ReplaceAllString(work, "")
	}

	noPromote := strings.Contains(work, "不成")
	work = strings.Replace(work, "不成", "", 1)
	drop := strings.Contains(work, "打")
	work = strings.Replace(work, "打", "", 1)

	def, ok := lookupKIFPiece(work)
	if !ok {
		return "", nil, false, fmt.Errorf("%w: unknown piece in %s", ErrInvalidMove, token)
	}
	promote := false
	if !noPromote && strings.HasPrefix(strings.TrimSpace(work), def.name) {
		rest := strings.TrimPrefix(strings.TrimSpace(work), def.name)
		promote = strings.HasPrefix(rest, "成")
	}

	if drop {
		if def.promoted {
			return "", nil, false, fmt.Errorf("%w: cannot drop promoted piece", ErrInvalidMove)
		}
		return fmt.Sprintf("%c*%s", def.kind.Type.Letter(), formatSquare(dest.file, dest.rank)), &dest, false, nil
	}
	if !hasFrom {
		return "", nil, false, fmt.Errorf("%w: missing source square in %s", ErrInvalidMove, token)
	}
	usi := formatSquare(from.file, from.rank) + formatSquare(dest.file, dest.rank)
	if promote {
		usi += "+"
	}
	return usi, &dest, false, nil
}

func isTerminalMove(token string) bool {
	switch token {
	case "投了", "中断", "持将棋", "千日手", "詰み", "切れ負け", "反則勝ち", "反則負け", "入玉勝ち", "勝ち宣言":
		return true
	default:
		return false
	}
}

func isFoulEnd(lines []string) bool {
	for _, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			match = terminalLineRe.FindStringSubmatch(line)
		}
		if len(match) == 0 {
			continue
		}
		token := strings.TrimSpace(match[2])
		if isTerminalMove(token) {
			return token == "反則勝ち" || token == "反則負け"
		}
	}
	return false
}

func parseFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

func kanjiNumber(r rune) (int, bool) {
	switch r {
	case '一':
		return 1, true
	case '二':
		return 2, true
	case '三':
		return 3, true
	case '四':
		return 4, true
	case '五':
		return 5, true
	case '六':
		return 6, true
	case '七':
		return 7, true
	case '八':
		return 8, true
	case '九':
		return 9, true
	case '十':
		return 10, true
	default:
		return 0, false
	}
}

type kifPiece struct {
	name     string
	kind     Kind
	promoted bool
}

// Longer names first so that 成銀 wins over 銀.
var kifPieces = []kifPiece{
	{name: "成銀", kind: Kind{Type: Silver}, promoted: true},
	{name: "成桂", kind: Kind{Type: Knight}, promoted: true},
	{name: "成香", kind: Kind{Type: Lance}, promoted: true},
	{name: "成歩", kind: Kind{Type: Pawn}, promoted: true},
	{name: "と", kind: Kind{Type: Pawn}, promoted: true},
	{name: "杏", kind: Kind{Type: Lance}, promoted: true},
	{name: "圭", kind: Kind{Type: Knight}, promoted: true},
	{name: "全", kind: Kind{Type: Silver}, promoted: true},
	{name: "馬", kind: Kind{Type: Bishop}, promoted: true},
	{name: "龍", kind: Kind{Type: Rook}, promoted: true},
	{name: "竜", kind: Kind{Type: Rook}, promoted: true},
	{name: "王", kind: Kind{Type: King}},
	{name: "玉", kind: Kind{Type: King}},
	{name: "飛", kind: Kind{Type: Rook}},
	{name: "角", kind: Kind{Type: Bishop}},
	{name: "金", kind: Kind{Type: Gold}},
	{name: "銀", kind: Kind{Type: Silver}},
	{name: "桂", kind: Kind{Type: Knight}},
	{name: "香", kind: Kind{Type: Lance}},
	{name: "歩", kind: Kind{Type: Pawn}},
}

func lookupKIFPiece(text string) (kifPiece, bool) {
	clean := strings.TrimSpace(text)
	for _, def := range kifPieces {
		if strings.HasPrefix(clean, def.name) {
			return def, true
		}
	}
	return kifPiece{}, false
}

func initialPositionFromKIF(lines []string) (*Position, error) {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手合割") && strings.Contains(trim, "平手") {
			return NewStandardPosition(), nil
		}
	}

	boardLines := collectBoardLines(lines)
	if len(boardLines) == 0 {
		return nil, fmt.Errorf("%w: no board definition found", ErrInvalidLayout)
	}
	layout := make([][]string, 0, len(boardLines))
	for i, line := range boardLines {
		row, err := parseBoardRow(line)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidLayout, i+1, err)
		}
		layout = append(layout, row)
	}
	black, white, err := parseHandsCounts(lines)
	if err != nil {
		return nil, err
	}
	board, err := NewBoard(layout, black, white)
	if err != nil {
		return nil, err
	}
	return NewPosition(board, parseTurn(lines), nil)
}

func collectBoardLines(lines []string) []string {
	var board []string
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "|") && strings.Contains(trim[1:], "|") {
			board = append(board, trim)
		}
	}
	return board
}

// parseBoardRow reads "| ・v香v玉|一" into cell codes, highest file first.
func parseBoardRow(line string) ([]string, error) {
	trim := strings.TrimPrefix(strings.TrimSpace(line), "|")
	if end := strings.Index(trim, "|"); end >= 0 {
		trim = trim[:end]
	}
	runes := []rune(trim)
	var cells []string
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		if r == '・' {
			cells = append(cells, "")
			i++
			continue
		}
		color := Black
		if r == 'v' {
			color = White
			i++
			if i >= len(runes) {
				return nil, errors.New("dangling gote marker")
			}
		}
		def, ok := lookupKIFPiece(string(runes[i:]))
		if !ok {
			return nil, fmt.Errorf("unknown piece %c", runes[i])
		}
		piece := Piece{Type: def.kind.Type, Promoted: def.promoted, Color: color}
		cells = append(cells, piece.String())
		i += utf8.RuneCountInString(def.name)
	}
	return cells, nil
}

func parseTurn(lines []string) Color {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手番") {
			if strings.Contains(trim, "後手") {
				return White
			}
			return Black
		}
		if strings.HasPrefix(trim, "後手番") {
			return White
		}
	}
	return Black
}

func parseHandsCounts(lines []string) (Hand, Hand, error) {
	var black, white Hand
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		var target *Hand
		switch {
		case strings.HasPrefix(trim, "先手の持駒"):
			target = &black
		case strings.HasPrefix(trim, "後手の持駒"):
			target = &white
		default:
			continue
		}
		counts, err := parseHandLine(trim)
		if err != nil {
			return Hand{}, Hand{}, err
		}
		for _, t := range HandOrder {
			target.Add(t, counts[t])
		}
	}
	return black, white, nil
}

// parseHandLine reads "先手の持駒：飛　角　歩三" into counts.
func parseHandLine(line string) (Hand, error) {
	parts := strings.SplitN(line, "：", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(line, ":", 2)
	}
	if len(parts) != 2 {
		return Hand{}, fmt.Errorf("%w: invalid hand line: %s", ErrInvalidLayout, line)
	}
	var hand Hand
	runes := []rune(strings.TrimSpace(parts[1]))
	if string(runes) == "なし" {
		return hand, nil
	}
	for i := 0; i < len(runes); {
		if runes[i] == ' ' || runes[i] == '　' {
			i++
			continue
		}
		def, ok := lookupKIFPiece(string(runes[i]))
		if !ok || def.promoted || def.kind.Type == King {
			return Hand{}, fmt.Errorf("%w: unknown hand piece %c", ErrInvalidLayout, runes[i])
		}
		i++
		count, consumed := parseCount(runes[i:])
		if consumed == 0 {
			count = 1
		}
		i += consumed
		hand.Add(def.kind.Type, count)
	}
	return hand, nil
}

// parseCount reads arabic digits or kanji numerals such as 十八.
func parseCount(runes []rune) (int, int) {
	if len(runes) == 0 {
		return 0, 0
	}
	if runes[0] >= '0' && runes[0] <= '9' {
		val, i := 0, 0
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			val = val*10 + int(runes[i]-'0')
			i++
		}
		return val, i
	}
	value, consumed := 0, 0
	for consumed < len(runes) {
		n, ok := kanjiNumber(runes[consumed])
		if !ok {
			break
		}
		if n == 10 {
			if value == 0 {
				value = 1
			}
			value *= 10
		} else {
			value += n
		}
		consumed++
	}
	if value == 0 {
		return 0, 0
	}
	return value, consumed
}

// CollectKIF lists every .kif file below root, sorted.
func CollectKIF(root string) ([]string, error) {
	var files []string
	if err := WalkKIF(root, func(path string) error {
		files = append(files, path)
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// WalkKIF calls fn for every .kif file below root. fn may return
// filepath.SkipAll to stop early.
func WalkKIF(root string, fn func(path string) error) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".kif") {
			return nil
		}
		return fn(path)
	})
	if errors.Is(err, filepath.SkipAll) {
		return nil
	}
	return err
}

// CountKIF counts .kif files below root without collecting their paths.
func CountKIF(root string) (int, error) {
	n := 0
	err := WalkKIF(root, func(string) error {
		n++
		return nil
	})
	return n, err
}
