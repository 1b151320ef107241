// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package schedule

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// stagingJob is one unit of work flowing through the copy/move
// pipeline. The zero value is never sent; closeJob is the typed
// sentinel a worker recognizes as "no more work, shut down" instead of
// relying on channel closure alone, so the same channel can carry a
// clean shutdown signal to every worker in a pool without a second
// close-and-recover dance.
type stagingJob struct {
	src, dst string
	closing  bool
}

// closeJob is sent once per worker in a pool to stop it.
var closeJob = stagingJob{closing: true}

// StagingPipeline implements the raw-IQ archival path. Nothing in this
// module constructs one or consults Config.SaveChirpIQ; a caller that
// starts it gets this behavior: files land in a staging directory first (copy),
// then get promoted into the permanent archive (move), each stage run
// by its own small worker pool reading off a bounded channel — the
// channel/typed-sentinel replacement for the original's two
// multiprocessing queues.
type StagingPipeline struct {
	copyCh chan stagingJob
	moveCh chan stagingJob

	copyWorkers int
	moveWorkers int

	copyWG sync.WaitGroup
	moveWG sync.WaitGroup

	errs chan error
}

// NewStagingPipeline starts copyWorkers goroutines consuming copy jobs
// and moveWorkers goroutines consuming move jobs. A completed copy job
// enqueues a move job for the same logical file.
func NewStagingPipeline(stagingDir, archiveDir string, copyWorkers, moveWorkers int) *StagingPipeline {
	p := &StagingPipeline{
		copyCh:      make(chan stagingJob, 64),
		moveCh:      make(chan stagingJob, 64),
		copyWorkers: copyWorkers,
		moveWorkers: moveWorkers,
		errs:        make(chan error, 64),
	}

	for i := 0; i < moveWorkers; i++ {
		p.moveWG.Add(1)
		go p.runMoveWorker()
	}
	for i := 0; i < copyWorkers; i++ {
		p.copyWG.Add(1)
		go p.runCopyWorker(stagingDir, archiveDir)
	}

	return p
}

// Stage enqueues src (a raw-IQ block file written by the recorder) for
// staging-then-archival.
func (p *StagingPipeline) Stage(src string) {
	p.copyCh <- stagingJob{src: src}
}

// Close tells every copy worker to stop, waits for the copy stage to
// drain (so no in-flight move job is lost), then tells every move
// worker to stop and waits for that stage to drain too. Call once,
// after the last Stage.
func (p *StagingPipeline) Close() []error {
	for i := 0; i < p.copyWorkers; i++ {
		p.copyCh <- closeJob
	}
	p.copyWG.Wait()

	for i := 0; i < p.moveWorkers; i++ {
		p.moveCh <- closeJob
	}
	p.moveWG.Wait()

	close(p.errs)
	var errs []error
	for err := range p.errs {
		errs = append(errs, err)
	}
	return errs
}

func (p *StagingPipeline) runCopyWorker(stagingDir, archiveDir string) {
	defer p.copyWG.Done()
	for job := range p.copyCh {
		if job.closing {
			return
		}

		dst := filepath.Join(stagingDir, filepath.Base(job.src))
		if err := copyFile(job.src, dst); err != nil {
			p.errs <- fmt.Errorf("schedule: staging copy %s: %w", job.src, err)
			continue
		}

		p.moveCh <- stagingJob{
			src: dst,
			dst: filepath.Join(archiveDir, filepath.Base(job.src)),
		}
	}
}

func (p *StagingPipeline) runMoveWorker() {
	defer p.moveWG.Done()
	for job := range p.moveCh {
		if job.closing {
			return
		}
		if err := os.Rename(job.src, job.dst); err != nil {
			p.errs <- fmt.Errorf("schedule: archiving move %s -> %s: %w", job.src, job.dst, err)
		}
	}
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// vim: foldmethod=marker
