package clientstate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"novaclient/internal/catalog"
	"novaclient/internal/game"
	"novaclient/internal/intel"
)

type fakeCatalog struct {
	restoreErr   error
	determineErr error
	restored     int
}

func (c *fakeCatalog) Restore() error {
	c.restored++
	return c.restoreErr
}

func (c *fakeCatalog) Determine(r game.Race, l game.TechLevel) (*catalog.RaceComponents, error) {
	if c.determineErr != nil {
		return nil, c.determineErr
	}
	return &catalog.RaceComponents{Race: r.Name, Levels: l, Components: map[string]catalog.ComponentDef{
		"Quick Jump 5": {Name: "Quick Jump 5", Type: "Engine"},
	}}, nil
}

type fakeResolver struct {
	race      string
	intelPath string
	err       error
	asked     []string
}

func (r *fakeResolver) SelectRace(_ string, races []string) (string, error) {
	r.asked = races
	return r.race, r.err
}

func (r *fakeResolver) ChooseIntelFile(string) (string, error) {
	return r.intelPath, r.err
}

func star(name, owner string, year int) *game.Star {
	s := game.NewStar()
	s.Name = name
	s.Owner = owner
	s.Year = year
	s.Gravity = 50
	s.Colonists = 1000
	return s
}

func turn(year int, race string) *intel.Snapshot {
	snap := intel.New()
	snap.TurnYear = year
	snap.MyRace.Name = race
	snap.RaceNames = []string{"Alice", "Bob"}
	for _, s := range []*game.Star{star("Sol", "Alice", year), star("Rigel", "Bob", year)} {
		snap.Stars[s.Name] = s
	}
	return snap
}

func writeTurn(t *testing.T, dir, race string, snap *intel.Snapshot) string {
	t.Helper()
	p := filepath.Join(dir, race+".intel")
	if err := snap.WriteFile(p); err != nil {
		t.Fatalf("write intel: %v", err)
	}
	return p
}

func touchRace(t *testing.T, dir, race string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, race+".race"), []byte("<Race/>"), 0o644); err != nil {
		t.Fatalf("write race: %v", err)
	}
}

func TestRestore_MissingBlob(t *testing.T) {
	dir := t.TempDir()
	s := Restore(dir, "Alice", nil)
	if s.RaceName != "Alice" || s.GameFolder != dir || s.StatePath != filepath.Join(dir, "Alice.state") {
		t.Fatalf("identity=%q %q %q", s.RaceName, s.GameFolder, s.StatePath)
	}
	if s.RestoreError() != nil {
		t.Fatalf("missing blob reported as lost history: %v", s.RestoreError())
	}
	if !s.FirstTurn || s.ResearchBudget != DefaultResearchBudget || s.StarReports == nil {
		t.Fatalf("not a fresh state: %+v", s)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save after fallback: %v", err)
	}
}

func TestRestore_CorruptBlob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(StatePathFor(dir, "Alice"), []byte("not a state file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(StatePathFor(dir, "Alice")); !errors.Is(err, ErrMalformedState) {
		t.Fatalf("err=%v want ErrMalformedState", err)
	}

	s := Restore(dir, "Alice", nil)
	if !errors.Is(s.RestoreError(), ErrMalformedState) {
		t.Fatalf("restore error=%v want ErrMalformedState", s.RestoreError())
	}
	if s.RaceName != "Alice" || s.GameFolder != dir || s.StatePath != StatePathFor(dir, "Alice") {
		t.Fatalf("identity=%q %q %q", s.RaceName, s.GameFolder, s.StatePath)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := ReadFile(s.StatePath); err != nil {
		t.Fatalf("blob still unreadable after save: %v", err)
	}
}

func TestSave_ReadFile(t *testing.T) {
	dir := t.TempDir()
	s := New()
	s.setIdentity(dir, "Alice", StatePathFor(dir, "Alice"))
	s.FirstTurn = false
	s.TurnYear = 2104
	s.ResearchBudget = 0
	s.ResearchLevels = game.NewTechLevel(1, 2, 3, 4, 5, 6)
	s.DeleteFleet(0x1f)
	s.DeleteDesign("Alice/Old Scout")
	s.BattlePlans["Raid"] = &game.BattlePlan{Name: "Raid", Tactic: "Disengage"}
	s.PlayerRelations["Bob"] = game.Enemy
	s.PlayerRelations["Carol"] = game.Neutral
	sb := game.NewStar()
	sb.Name = "Rigel"
	sb.Owner = "Bob"
	sb.Starbase = &game.FleetRef{Key: 0x42}
	s.StarReports["Rigel"] = intel.NewStarIntelFrom(sb, intel.InPlace, 2103)

	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Phase() != Persisted {
		t.Fatalf("phase=%s want persisted", s.Phase())
	}

	h, err := ReadHeader(s.StatePath)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.Race != "Alice" || h.TurnYear != 2104 || h.Version != StateVersion {
		t.Fatalf("header=%+v", h)
	}

	got, err := ReadFile(s.StatePath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.FirstTurn {
		t.Fatalf("first turn came back true")
	}
	if got.ResearchBudget != 0 || got.ResearchLevels != s.ResearchLevels {
		t.Fatalf("research budget=%d levels=%v", got.ResearchBudget, got.ResearchLevels)
	}
	if len(got.DeletedFleets) != 1 || got.DeletedFleets[0] != "1F" || len(got.DeletedDesigns) != 1 {
		t.Fatalf("tombstones=%v %v", got.DeletedFleets, got.DeletedDesigns)
	}
	if got.PlayerRelations["Bob"] != game.Enemy {
		t.Fatalf("relations=%v", got.PlayerRelations)
	}
	if rel, ok := got.PlayerRelations["Carol"]; !ok || rel != game.Neutral {
		t.Fatalf("neutral relation lost: %v", got.PlayerRelations)
	}
	if got.BattlePlans["Raid"] == nil || got.BattlePlans["Raid"].Tactic != "Disengage" {
		t.Fatalf("battle plans=%v", got.BattlePlans)
	}
	r := got.StarReports["Rigel"]
	if r == nil || r.Starbase == nil || r.Starbase.Key != 0x42 || r.Colonists != game.Unset {
		t.Fatalf("star report=%+v", r)
	}
	if got.KnownEnemyDesigns == nil {
		t.Fatalf("empty map decoded as nil")
	}
}

func TestInitialize_FirstTurnFromIntel(t *testing.T) {
	dir := t.TempDir()
	path := writeTurn(t, dir, "Alice", turn(game.StartingYear, "Alice"))

	cat := &fakeCatalog{}
	s := New()
	err := s.Initialize(Options{GameFolder: dir, IntelPath: path, Catalog: cat})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if cat.restored != 1 {
		t.Fatalf("catalog restored %d times want 1", cat.restored)
	}
	if s.RaceName != "Alice" || s.StatePath != StatePathFor(dir, "Alice") {
		t.Fatalf("identity=%q %q", s.RaceName, s.StatePath)
	}
	if s.Phase() != Ready || s.FirstTurn {
		t.Fatalf("phase=%s first turn=%v", s.Phase(), s.FirstTurn)
	}
	if s.BattlePlans[game.DefaultPlanName] == nil {
		t.Fatalf("default battle plan missing")
	}
	for _, r := range []string{"Alice", "Bob"} {
		if rel, ok := s.PlayerRelations[r]; !ok || rel != game.Neutral {
			t.Fatalf("relation %s=%v ok=%v", r, rel, ok)
		}
	}
	if s.AvailableComponents == nil || !s.AvailableComponents.Has("Quick Jump 5") {
		t.Fatalf("available components=%v", s.AvailableComponents)
	}
	if len(s.PlayerStars) != 1 || s.PlayerStars[0].Name != "Sol" {
		t.Fatalf("player stars=%v", s.PlayerStars)
	}
	if s.IntelPath() != path || s.Absorbed().StarsUpdated == 0 {
		t.Fatalf("intel path=%q absorbed=%+v", s.IntelPath(), s.Absorbed())
	}
}

func TestInitialize_ResumeKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	touchRace(t, dir, "Alice")

	prior := Restore(dir, "Alice", nil)
	prior.FirstTurn = false
	prior.BattlePlans["Raid"] = &game.BattlePlan{Name: "Raid"}
	prior.Messages = []game.Message{{Year: 2101, Text: "old news"}}
	far := star("Far", "Bob", 2101)
	prior.StarReports["Far"] = intel.NewStarIntelFrom(far, intel.InDeepScan, 2101)
	if err := prior.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := turn(2102, "Alice")
	next.Messages = []game.Message{{Year: 2102, Text: "new news"}}
	writeTurn(t, dir, "Alice", next)

	s := New()
	if err := s.Initialize(Options{GameFolder: dir, Catalog: &fakeCatalog{}}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if s.RaceName != "Alice" {
		t.Fatalf("race=%q want Alice", s.RaceName)
	}
	if s.StarReports["Far"] == nil || s.StarReports["Far"].Colonists != 1000 {
		t.Fatalf("history lost: %v", s.StarReports)
	}
	if len(s.Messages) != 2 || s.Messages[1].Text != "new news" {
		t.Fatalf("messages=%v", s.Messages)
	}
	if s.BattlePlans["Raid"] == nil {
		t.Fatalf("saved battle plan lost")
	}
	if _, ok := s.BattlePlans[game.DefaultPlanName]; ok {
		t.Fatalf("first-turn bootstrap ran on a resumed game")
	}
}

func TestInitialize_StatePathNamesRace(t *testing.T) {
	dir := t.TempDir()
	prior := Restore(dir, "Bob", nil)
	prior.FirstTurn = false
	prior.ResearchBudget = 25
	if err := prior.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	writeTurn(t, dir, "Bob", turn(2103, "Bob"))

	s := New()
	err := s.Initialize(Options{GameFolder: dir, StatePath: prior.StatePath, Catalog: &fakeCatalog{}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if s.RaceName != "Bob" || s.ResearchBudget != 25 || s.TurnYear != 2103 {
		t.Fatalf("race=%q budget=%d year=%d", s.RaceName, s.ResearchBudget, s.TurnYear)
	}

	err = New().Initialize(Options{GameFolder: dir, StatePath: filepath.Join(dir, "Nobody.state"), Catalog: &fakeCatalog{}})
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("missing state file: err=%v want ErrIdentityUnresolved", err)
	}
}

func TestInitialize_SelectsAmongRaces(t *testing.T) {
	dir := t.TempDir()
	touchRace(t, dir, "Alice")
	touchRace(t, dir, "Bob")
	writeTurn(t, dir, "Bob", turn(2100, "Bob"))

	res := &fakeResolver{race: "Bob"}
	s := New()
	if err := s.Initialize(Options{GameFolder: dir, Catalog: &fakeCatalog{}, Resolver: res}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(res.asked) != 2 || res.asked[0] != "Alice" || res.asked[1] != "Bob" {
		t.Fatalf("resolver offered=%v", res.asked)
	}
	if s.RaceName != "Bob" {
		t.Fatalf("race=%q want Bob", s.RaceName)
	}
}

func TestInitialize_IdentityUnresolved(t *testing.T) {
	dir := t.TempDir()
	if err := New().Initialize(Options{GameFolder: dir, Catalog: &fakeCatalog{}}); !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("empty folder: err=%v want ErrIdentityUnresolved", err)
	}

	touchRace(t, dir, "Alice")
	touchRace(t, dir, "Bob")
	res := &fakeResolver{err: errors.New("canceled")}
	err := New().Initialize(Options{GameFolder: dir, Catalog: &fakeCatalog{}, Resolver: res})
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("canceled selection: err=%v want ErrIdentityUnresolved", err)
	}

	err = New().Initialize(Options{GameFolder: dir, IntelPath: filepath.Join(dir, "gone.intel"), Catalog: &fakeCatalog{}})
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("missing intel: err=%v want ErrIdentityUnresolved", err)
	}
}

func TestInitialize_ConfigurationMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeTurn(t, dir, "Alice", turn(2100, "Alice"))

	cases := map[string]Options{
		"catalog restore": {GameFolder: dir, IntelPath: path, Catalog: &fakeCatalog{restoreErr: errors.New("no file")}},
		"determine":       {GameFolder: dir, IntelPath: path, Catalog: &fakeCatalog{determineErr: errors.New("bad")}},
		"no folder":       {IntelPath: path, Catalog: &fakeCatalog{}},
		"missing folder":  {GameFolder: filepath.Join(dir, "nope"), IntelPath: path, Catalog: &fakeCatalog{}},
		"no catalog":      {GameFolder: dir, IntelPath: path},
	}
	for name, opts := range cases {
		if err := New().Initialize(opts); !errors.Is(err, ErrConfigurationMissing) {
			t.Fatalf("%s: err=%v want ErrConfigurationMissing", name, err)
		}
	}
}

func TestInitialize_MalformedIntelIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Alice.intel")
	if err := os.WriteFile(path, []byte("<ROOT><Intel><TurnYear>x</TurnYear>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := New().Initialize(Options{GameFolder: dir, IntelPath: path, Catalog: &fakeCatalog{}})
	if !errors.Is(err, intel.ErrMalformedSnapshot) {
		t.Fatalf("err=%v want ErrMalformedSnapshot", err)
	}
}
