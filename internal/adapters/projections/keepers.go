package projections

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/domain/model"
)

var (
	salaryColumns = []string{"keeper_salary", "salary", "price"}
	keeperTeam    = []string{"team_id", "team"}
)

// ParseKeepers reads player_id,keeper_salary[,team_id] rows into keeper
// picks. Team ids may be empty; callers seat those keepers themselves.
func ParseKeepers(r io.Reader) ([]model.PickEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read keeper header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	idCol, ok := findColumn(index, idColumns)
	if !ok {
		return nil, fmt.Errorf("%w: player id", ErrMissingColumn)
	}
	salCol, ok := findColumn(index, salaryColumns)
	if !ok {
		return nil, fmt.Errorf("%w: keeper_salary", ErrMissingColumn)
	}
	teamCol, hasTeam := findColumn(index, keeperTeam)

	var out []model.PickEvent
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		id := cell(idCol)
		if id == "" {
			continue
		}
		price, err := strconv.ParseFloat(cell(salCol), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%w: line %d salary %q", ErrInvalidRow, line, cell(salCol))
		}
		k := model.PickEvent{PlayerID: id, Price: int(price + 0.5), Keeper: true}
		if hasTeam {
			k.TeamID = cell(teamCol)
		}
		out = append(out, k)
	}
	return out, nil
}

// LoadKeepers reads a keeper file. An empty path yields no keepers.
func LoadKeepers(path string) ([]model.PickEvent, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keepers %s: %w", path, err)
	}
	defer f.Close()
	keepers, err := ParseKeepers(f)
	if err != nil {
		return nil, fmt.Errorf("parse keepers %s: %w", path, err)
	}
	return keepers, nil
}
