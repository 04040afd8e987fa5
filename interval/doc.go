/*Package interval implements the region model for coverage computation:
  reference sequences, half-open genomic intervals, BED-style interval
  loading, and the RegionSet type describing which positions of which
  chromosomes are analyzed.
  (Note that overlapping input intervals are merged, not tracked
  separately; it is currently necessary to use another package when that is
  not the desired behavior.)
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
