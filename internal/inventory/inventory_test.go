package inventory

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

const roomsCSV = `ROOM_NAME,FLOOR,CAPACITY_THEATRE,CAPACITY_BANQUET,CAPACITY_CRESCENT_ROUND,NOTES
Ballroom,1,300,200,150,has stage
Salon A,2,80,n/a,40,
,3,10,10,10,orphan row
Boardroom,-1,,12,,
`

func writeWorkbook(path, sheet string, rows [][]any) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		Expect(err).NotTo(HaveOccurred())
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.SetSheetRow(sheet, cellRef, &row)).To(Succeed())
	}
	Expect(f.SaveAs(path)).To(Succeed())
}

var _ = Describe("Inventory", func() {
	Context("ReadCSV", func() {
		It("should parse rooms in file order", func() {
			inv, err := ReadCSV(strings.NewReader(roomsCSV))
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Rooms).To(Equal([]core.Room{
				{Name: "Ballroom", Floor: 1, Capacity: map[string]int{"THEATRE": 300, "BANQUET": 200, "CRESCENT_ROUND": 150}},
				{Name: "Salon A", Floor: 2, Capacity: map[string]int{"THEATRE": 80, "BANQUET": 0, "CRESCENT_ROUND": 40}},
				{Name: "Boardroom", Floor: 0, Capacity: map[string]int{"THEATRE": 0, "BANQUET": 12, "CRESCENT_ROUND": 0}},
			}))
		})

		It("should match headers case-insensitively", func() {
			inv, err := ReadCSV(strings.NewReader(" room_name , Floor, capacity_ushape\nA,4,20\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Rooms).To(HaveLen(1))
			Expect(inv.Rooms[0].Floor).To(Equal(4))
			capacity, ok := inv.Rooms[0].CapacityFor("USHAPE")
			Expect(ok).To(BeTrue())
			Expect(capacity).To(Equal(20))
		})

		It("should reject a header without room names", func() {
			_, err := ReadCSV(strings.NewReader("FLOOR,CAPACITY_THEATRE\n1,10\n"))
			Expect(err).To(MatchError(ErrMissingNameColumn))
		})

		It("should reject an empty file", func() {
			_, err := ReadCSV(strings.NewReader(""))
			Expect(err).To(MatchError(ErrMissingNameColumn))
		})

		It("should reject duplicate rooms", func() {
			_, err := ReadCSV(strings.NewReader("ROOM_NAME,FLOOR\nA,1\nA,2\n"))
			Expect(err).To(MatchError(ErrDuplicateRoom))
			Expect(err.Error()).To(ContainSubstring("rows 2 and 3"))
		})
	})

	Context("ReadXLSX", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should read the first sheet by default", func() {
			path := filepath.Join(dir, "rooms.xlsx")
			writeWorkbook(path, "Sheet1", [][]any{
				{"ROOM_NAME", "FLOOR", "CAPACITY_BOARDROOM"},
				{"Library", "3", "14"},
			})

			inv, err := Load(path, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Rooms).To(Equal([]core.Room{
				{Name: "Library", Floor: 3, Capacity: map[string]int{"BOARDROOM": 14}},
			}))
		})

		It("should read a named sheet", func() {
			path := filepath.Join(dir, "venue.xlsx")
			writeWorkbook(path, "Rooms", [][]any{
				{"ROOM_NAME", "FLOOR", "CAPACITY_CLASSROOM"},
				{"Atrium", 0, 60},
			})

			inv, err := ReadXLSX(path, "Rooms")
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Len()).To(Equal(1))
			Expect(inv.Room(0).Capacity).To(HaveKeyWithValue("CLASSROOM", 60))
		})

		It("should fail on a missing sheet", func() {
			path := filepath.Join(dir, "venue.xlsx")
			writeWorkbook(path, "Sheet1", [][]any{{"ROOM_NAME"}})
			_, err := ReadXLSX(path, "Nope")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Load", func() {
		It("should dispatch CSV files by extension", func() {
			path := filepath.Join(GinkgoT().TempDir(), "rooms.CSV")
			Expect(os.WriteFile(path, []byte(roomsCSV), 0o600)).To(Succeed())
			inv, err := Load(path, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Len()).To(Equal(3))
		})

		It("should reject unknown formats", func() {
			_, err := Load("rooms.json", "")
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})

		It("should report a missing file", func() {
			_, err := Load(filepath.Join(GinkgoT().TempDir(), "absent.csv"), "")
			Expect(err).To(HaveOccurred())
		})
	})
})
