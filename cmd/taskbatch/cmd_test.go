package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

func execute(args ...string) (string, error) {
	out := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func countLines(out, substr string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

var _ = Describe("taskbatch", func() {
	quiet := []string{"--no-color", "--log-level", "error"}

	Describe("run", func() {
		It("should report every task of an exhaustive batch", func() {
			out, err := execute(append([]string{"run", "--tasks", "3", "--min-duration", "0", "--max-duration", "0"}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(countLines(out, "processed task")).To(Equal(3))
			Expect(out).To(ContainSubstring("3/3 received"))
		})

		It("should report timed out tasks of a deadline batch", func() {
			out, err := execute(append([]string{
				"run", "--policy", "deadline", "--deadline", "50ms",
				"--tasks", "2", "--min-duration", "1s", "--max-duration", "1s",
			}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Timeout: Task-0\n"))
			Expect(out).To(ContainSubstring("Timeout: Task-1\n"))
			Expect(out).To(ContainSubstring("0/2 received"))
		})

		It("should stream results", func() {
			out, err := execute(append([]string{
				"run", "--policy", "stream", "--workers", "2",
				"--tasks", "4", "--min-duration", "0", "--max-duration", "0",
			}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(countLines(out, "processed task")).To(Equal(4))
		})

		It("should report faults without failing", func() {
			out, err := execute(append([]string{
				"run", "--tasks", "2", "--fault-rate", "1", "--min-duration", "0", "--max-duration", "0",
			}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(countLines(out, "Fault: Task-")).To(Equal(2))
		})

		It("should read settings from the environment", func() {
			Expect(os.Setenv("TASKBATCH_BATCH_TASKS", "2")).To(Succeed())
			DeferCleanup(os.Unsetenv, "TASKBATCH_BATCH_TASKS")

			out, err := execute(append([]string{"run", "--min-duration", "0", "--max-duration", "0"}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(countLines(out, "processed task")).To(Equal(2))
		})

		It("should read settings from a config file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "taskbatch.yaml")
			content := "batch:\n  tasks: 4\nwork:\n  min-duration: 0s\n  max-duration: 0s\n"
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			out, err := execute(append([]string{"run", "--config", path}, quiet...)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(countLines(out, "processed task")).To(Equal(4))
		})

		DescribeTable("should reject an invalid configuration",
			func(args ...string) {
				// args come last so they override the quiet defaults
				_, err := execute(append(append([]string{"run"}, quiet...), args...)...)

				Expect(err).To(HaveOccurred())
				Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
			},
			Entry("unknown policy", "--policy", "fastest"),
			Entry("negative tasks", "--tasks", "-1"),
			Entry("fault rate above one", "--fault-rate", "2"),
			Entry("inverted durations", "--min-duration", "2s", "--max-duration", "1s"),
			Entry("unknown log level", "--log-level", "loud"),
		)
	})

	Describe("export and inspect", func() {
		It("should export a batch and list it back", func() {
			// Arrange
			dir := GinkgoT().TempDir()
			db := filepath.Join(dir, "batches.duckdb")
			xlsx := filepath.Join(dir, "batch.xlsx")

			// Act
			_, err := execute(append([]string{
				"run", "--tasks", "3", "--min-duration", "0", "--max-duration", "0",
				"--export-db", db, "--export-xlsx", xlsx,
			}, quiet...)...)
			Expect(err).NotTo(HaveOccurred())

			out, err := execute(append([]string{"inspect", "--db", db}, quiet...)...)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(xlsx).To(BeAnExistingFile())
			Expect(out).To(ContainSubstring("BATCH"))
			Expect(out).To(ContainSubstring("exhaustive"))
			Expect(out).To(ContainSubstring("count-reached"))
		})

		It("should fail on an export directory that does not exist", func() {
			xlsx := filepath.Join(GinkgoT().TempDir(), "missing", "batch.xlsx")

			_, err := execute(append([]string{
				"run", "--tasks", "1", "--min-duration", "0", "--max-duration", "0", "--export-xlsx", xlsx,
			}, quiet...)...)

			Expect(err).To(HaveOccurred())
		})

		It("should require a database to inspect", func() {
			_, err := execute(append([]string{"inspect"}, quiet...)...)

			Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
		})
	})

	It("should print the version", func() {
		out, err := execute("version")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("taskbatch dev\n"))
	})
})
