package store

import (
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/queue-sim/queue-sim/sim"
)

var _ = Describe("SQLiteRecorder", func() {
	var (
		dir      string
		path     string
		recorder *SQLiteRecorder
	)

	customer := func(id int) sim.Customer {
		at := float64(id)
		return sim.Customer{
			ID: id, InterarrivalTime: 1, ArrivalTime: at, ServiceTime: 0.5,
			Server: id % 2, StartTime: at, EndTime: at + 0.5, TurnaroundTime: 0.5,
			ArrivalUniform: 0.3, ServiceUniform: 0.7,
		}
	}

	countRows := func(query string, args ...any) int {
		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		var n int
		Expect(db.QueryRow(query, args...).Scan(&n)).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "qsim-store")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
		path = filepath.Join(dir, "run.sqlite3")

		recorder, err = NewSQLiteRecorder(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(recorder.Close()).To(Succeed())
	})

	It("should create the database file with a run id", func() {
		_, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(recorder.RunID()).NotTo(BeEmpty())
		Expect(recorder.Path()).To(Equal(path))
	})

	It("should refuse to overwrite an existing file", func() {
		_, err := NewSQLiteRecorder(path)
		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})

	It("should buffer customers until flushed", func() {
		for i := 1; i <= 3; i++ {
			Expect(recorder.Record(customer(i))).To(Succeed())
		}
		Expect(recorder.Written()).To(Equal(0))

		Expect(recorder.Flush()).To(Succeed())

		Expect(recorder.Written()).To(Equal(3))
		Expect(countRows("SELECT COUNT(*) FROM customers WHERE run_id = ?", recorder.RunID())).To(Equal(3))
	})

	It("should flush automatically when the batch is full", func() {
		recorder.batchSize = 2
		for i := 1; i <= 5; i++ {
			Expect(recorder.Record(customer(i))).To(Succeed())
		}
		Expect(recorder.Written()).To(Equal(4))
	})

	It("should store the run configuration and summary", func() {
		cfg := sim.SimulationConfig{
			ArrivalRate: 2, ServiceRate: 3, Servers: 2, ServiceDistribution: "normal",
			StopRule: sim.StopRuleCDF, StopThreshold: 0.999,
		}
		Expect(recorder.BeginRun(cfg, 42)).To(Succeed())
		Expect(recorder.Record(customer(1))).To(Succeed())
		Expect(recorder.Finish(sim.Summary{
			Customers: 1, TotalTime: 1.5, AvgService: 0.5, AvgTurnaround: 0.5,
			StopReason: sim.StopReasonThreshold,
		})).To(Succeed())

		Expect(countRows("SELECT COUNT(*) FROM runs WHERE customers = 1 AND stop_reason = 'threshold'")).To(Equal(1))
		Expect(countRows("SELECT COUNT(*) FROM customers")).To(Equal(1))
	})

	It("should flush pending customers on close", func() {
		Expect(recorder.Record(customer(1))).To(Succeed())
		Expect(recorder.Close()).To(Succeed())
		Expect(recorder.Close()).To(Succeed())

		Expect(countRows("SELECT COUNT(*) FROM customers")).To(Equal(1))
	})
})
