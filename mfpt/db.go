package mfpt

import (
	"fmt"
	"math"
)

const (
	TblEstimates = "mfptestimates"
	TblHits      = "mfpthits"
)

func (e *Estimator) initdb() error {
	if e.Db == nil {
		return nil
	}

	s := "CREATE TABLE IF NOT EXISTS " + TblEstimates + " (run TEXT,state INTEGER,method TEXT,workers INTEGER,samples INTEGER"
	s += ",mfpt REAL,sigma REAL,minvar REAL,minvarsigma REAL,steps INTEGER,accepted INTEGER,unresolved INTEGER);"
	if _, err := e.Db.Exec(s); err != nil {
		return fmt.Errorf("failed to create %v: %w", TblEstimates, err)
	}

	s = "CREATE TABLE IF NOT EXISTS " + TblHits + " (run TEXT,state INTEGER,target INTEGER,count INTEGER);"
	if _, err := e.Db.Exec(s); err != nil {
		return fmt.Errorf("failed to create %v: %w", TblHits, err)
	}
	return nil
}

func (e *Estimator) updateDb(res *Result) (err error) {
	if e.Db == nil {
		return nil
	}

	tx, err := e.Db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	s1 := "INSERT INTO " + TblEstimates + " (run,state,method,workers,samples,mfpt,sigma,minvar,minvarsigma,steps,accepted,unresolved) VALUES (?,?,?,?,?,?,?,?,?,?,?,?);"
	_, err = tx.Exec(s1, res.RunID, res.State, res.Method.String(), len(res.Means), res.Samples,
		nullable(res.MFPT), nullable(res.Sigma), nullable(res.MinVar), nullable(res.MinVarSigma),
		res.Stats.Steps(), res.Stats.Accepted(), res.Unresolved)
	if err != nil {
		return err
	}

	s2 := "INSERT INTO " + TblHits + " (run,state,target,count) VALUES (?,?,?,?);"
	res.Hits.Each(func(target, count int) {
		if err != nil {
			return
		}
		_, err = tx.Exec(s2, res.RunID, res.State, target, count)
	})
	return err
}

// nullable stores NaN estimates as NULL.
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
